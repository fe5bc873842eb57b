package worldinfo

import (
	"strings"
	"testing"
)

func keyed(id string, order int, keys ...string) Entry {
	return Entry{ID: id, Keys: keys, Content: id + " content", Enabled: true, Order: order}
}

func activeIDs(res ScanResult) []string {
	out := make([]string, 0, len(res.Active))
	for _, e := range res.Active {
		out = append(out, e.ID)
	}
	return out
}

func TestScanKeywordActivation(t *testing.T) {
	res := Scan(ScanInput{
		Entries: []Entry{
			keyed("dragon", 10, "dragon"),
			keyed("tavern", 20, "tavern"),
		},
		Turn: 1,
		Text: "A dragon circles overhead.",
	})
	if got := activeIDs(res); len(got) != 1 || got[0] != "dragon" {
		t.Fatalf("expected only dragon active, got %v", got)
	}
}

func TestScanSecondaryKeys(t *testing.T) {
	e := keyed("ambush", 10, "bandit")
	e.SecondaryKeys = []string{"road"}

	res := Scan(ScanInput{Entries: []Entry{e}, Turn: 1, Text: "a bandit in the city"})
	if len(res.Active) != 0 {
		t.Fatalf("expected secondary key to be required")
	}

	res = Scan(ScanInput{Entries: []Entry{e}, Turn: 1, Text: "a bandit on the road"})
	if len(res.Active) != 1 {
		t.Fatalf("expected activation with both key sets matching")
	}
}

func TestScanConstantAndOrder(t *testing.T) {
	res := Scan(ScanInput{
		Entries: []Entry{
			{ID: "world", Content: "w", Constant: true, Enabled: true, Order: 50},
			keyed("dragon", 10, "dragon"),
		},
		Turn: 1,
		Text: "the dragon",
	})
	if got := activeIDs(res); len(got) != 2 || got[0] != "dragon" || got[1] != "world" {
		t.Fatalf("expected order-sorted [dragon world], got %v", got)
	}
}

func TestScanDisabledAndOverrides(t *testing.T) {
	disabled := keyed("off", 10, "dragon")
	disabled.Enabled = false
	enabled := keyed("on", 20, "dragon")

	t.Run("disabled entry excluded", func(t *testing.T) {
		res := Scan(ScanInput{Entries: []Entry{disabled}, Turn: 1, Text: "dragon"})
		if len(res.Active) != 0 {
			t.Fatalf("expected no activation")
		}
	})

	t.Run("override enables", func(t *testing.T) {
		res := Scan(ScanInput{
			Entries:   []Entry{disabled},
			Overrides: map[string]bool{"off": true},
			Turn:      1,
			Text:      "dragon",
		})
		if len(res.Active) != 1 {
			t.Fatalf("expected override to enable the entry")
		}
	})

	t.Run("override disables", func(t *testing.T) {
		res := Scan(ScanInput{
			Entries:   []Entry{enabled},
			Overrides: map[string]bool{"on": false},
			Turn:      1,
			Text:      "dragon",
		})
		if len(res.Active) != 0 {
			t.Fatalf("expected override to disable the entry")
		}
	})
}

func TestScanStickyLifecycle(t *testing.T) {
	e := keyed("sticky", 10, "dragon")
	e.Sticky = 3

	stats := map[string]Stats{}

	// Turn 1: triggered, sticky arms then decays by one.
	res := Scan(ScanInput{Entries: []Entry{e}, Stats: stats, Turn: 1, Text: "a dragon"})
	if len(res.Active) != 1 {
		t.Fatalf("turn 1: expected active")
	}
	if res.Stats["sticky"].Sticky != 2 {
		t.Fatalf("turn 1: expected sticky 2, got %d", res.Stats["sticky"].Sticky)
	}

	// Turns 2 and 3: active with no trigger text.
	res = Scan(ScanInput{Entries: []Entry{e}, Stats: res.Stats, Turn: 2, Text: "nothing relevant"})
	if len(res.Active) != 1 {
		t.Fatalf("turn 2: expected active via sticky")
	}
	res = Scan(ScanInput{Entries: []Entry{e}, Stats: res.Stats, Turn: 3, Text: "nothing relevant"})
	if len(res.Active) != 1 {
		t.Fatalf("turn 3: expected active via sticky")
	}
	if res.Stats["sticky"].Sticky != 0 {
		t.Fatalf("turn 3: expected sticky exhausted, got %d", res.Stats["sticky"].Sticky)
	}

	// Turn 4: sticky spent, no trigger, inactive.
	res = Scan(ScanInput{Entries: []Entry{e}, Stats: res.Stats, Turn: 4, Text: "nothing relevant"})
	if len(res.Active) != 0 {
		t.Fatalf("turn 4: expected inactive")
	}
}

func TestScanCooldown(t *testing.T) {
	e := keyed("cd", 10, "dragon")
	e.Cooldown = 2

	res := Scan(ScanInput{Entries: []Entry{e}, Turn: 1, Text: "dragon"})
	if len(res.Active) != 1 {
		t.Fatalf("turn 1: expected active")
	}
	if res.Stats["cd"].Cooldown != 1 {
		t.Fatalf("turn 1: expected cooldown 1 remaining, got %d", res.Stats["cd"].Cooldown)
	}

	res = Scan(ScanInput{Entries: []Entry{e}, Stats: res.Stats, Turn: 2, Text: "dragon"})
	if len(res.Active) != 0 {
		t.Fatalf("turn 2: expected cooldown to block reactivation")
	}

	res = Scan(ScanInput{Entries: []Entry{e}, Stats: res.Stats, Turn: 3, Text: "dragon"})
	if len(res.Active) != 1 {
		t.Fatalf("turn 3: expected cooldown elapsed")
	}
}

func TestScanStickyThenCooldown(t *testing.T) {
	e := keyed("sc", 10, "dragon")
	e.Sticky = 1
	e.Cooldown = 2

	res := Scan(ScanInput{Entries: []Entry{e}, Turn: 1, Text: "dragon"})
	if len(res.Active) != 1 {
		t.Fatalf("turn 1: expected active")
	}
	if st := res.Stats["sc"]; st.Sticky != 0 || st.Cooldown != 1 {
		t.Fatalf("turn 1: expected cooldown armed at sticky expiry, got %+v", st)
	}

	res = Scan(ScanInput{Entries: []Entry{e}, Stats: res.Stats, Turn: 2, Text: "dragon"})
	if len(res.Active) != 0 {
		t.Fatalf("turn 2: expected cooldown to block")
	}

	res = Scan(ScanInput{Entries: []Entry{e}, Stats: res.Stats, Turn: 3, Text: "dragon"})
	if len(res.Active) != 1 {
		t.Fatalf("turn 3: expected active again")
	}
}

func TestScanPinnedAndSelected(t *testing.T) {
	t.Run("pinned included without trigger", func(t *testing.T) {
		res := Scan(ScanInput{
			Entries: []Entry{keyed("pin", 10, "dragon")},
			Pinned:  map[string]struct{}{"pin": {}},
			Turn:    1,
			Text:    "nothing",
		})
		if len(res.Active) != 1 {
			t.Fatalf("expected pinned entry active")
		}
	})

	t.Run("pinned and matching included once", func(t *testing.T) {
		res := Scan(ScanInput{
			Entries: []Entry{keyed("pin", 10, "dragon")},
			Pinned:  map[string]struct{}{"pin": {}},
			Turn:    1,
			Text:    "dragon",
		})
		if len(res.Active) != 1 {
			t.Fatalf("expected exactly one inclusion, got %d", len(res.Active))
		}
	})

	t.Run("selected admits without text match", func(t *testing.T) {
		res := Scan(ScanInput{
			Entries:  []Entry{keyed("sel", 10, "dragon")},
			Selected: map[string]struct{}{"sel": {}},
			Turn:     1,
			Text:     "nothing",
		})
		if len(res.Active) != 1 {
			t.Fatalf("expected selected entry active")
		}
	})
}

func TestScanBypass(t *testing.T) {
	res := Scan(ScanInput{
		Entries: []Entry{
			keyed("kw", 10, "dragon"),
			{ID: "const", Content: "c", Constant: true, Enabled: true, Order: 20},
		},
		Bypass: true,
		Turn:   1,
		Text:   "dragon",
	})
	if got := activeIDs(res); len(got) != 1 || got[0] != "const" {
		t.Fatalf("expected only constant entry under bypass, got %v", got)
	}
}

func TestScanLiveLinkDormancy(t *testing.T) {
	id := LiveLinkPrefix + "t1_r1"
	e := keyed(id, 900, "slime")

	t.Run("stays live inside the window", func(t *testing.T) {
		stats := map[string]Stats{id: {LastActiveTurn: 5}}
		res := Scan(ScanInput{Entries: []Entry{e}, Stats: stats, Turn: 15, Text: "nothing"})
		if len(res.Active) != 1 {
			t.Fatalf("expected entry live 10 turns after last interaction")
		}
		// Untouched passive inclusion must not refresh the window.
		if res.Stats[id].LastActiveTurn != 5 {
			t.Fatalf("expected LastActiveTurn untouched, got %d", res.Stats[id].LastActiveTurn)
		}
	})

	t.Run("goes dormant after the window", func(t *testing.T) {
		stats := map[string]Stats{id: {LastActiveTurn: 5}}
		res := Scan(ScanInput{Entries: []Entry{e}, Stats: stats, Turn: 16, Text: "nothing"})
		if len(res.Active) != 0 {
			t.Fatalf("expected dormant entry excluded")
		}
	})

	t.Run("keyword wakes a dormant entry", func(t *testing.T) {
		stats := map[string]Stats{id: {LastActiveTurn: 5}}
		res := Scan(ScanInput{Entries: []Entry{e}, Stats: stats, Turn: 16, Text: "the slime attacks"})
		if len(res.Active) != 1 {
			t.Fatalf("expected keyword to wake the entry")
		}
		if res.Stats[id].LastActiveTurn != 16 {
			t.Fatalf("expected refreshed LastActiveTurn, got %d", res.Stats[id].LastActiveTurn)
		}
	})

	t.Run("selection wakes a dormant entry", func(t *testing.T) {
		stats := map[string]Stats{id: {LastActiveTurn: 5}}
		res := Scan(ScanInput{
			Entries:  []Entry{e},
			Stats:    stats,
			Selected: map[string]struct{}{id: {}},
			Turn:     20,
			Text:     "nothing",
		})
		if len(res.Active) != 1 {
			t.Fatalf("expected selection to wake the entry")
		}
		if res.Stats[id].LastActiveTurn != 20 {
			t.Fatalf("expected refreshed LastActiveTurn, got %d", res.Stats[id].LastActiveTurn)
		}
	})
}

func TestScanRecursion(t *testing.T) {
	a := keyed("a", 10, "gate")
	a.Content = "The gate is watched by the warden."
	b := keyed("b", 20, "warden")
	b.Content = "The warden guards the crypt."
	c := keyed("c", 30, "crypt")
	c.Content = "The crypt holds the relic."
	d := keyed("d", 40, "relic")

	res := Scan(ScanInput{Entries: []Entry{a, b, c, d}, Turn: 1, Text: "we reach the gate"})
	got := activeIDs(res)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("expected two levels of expansion [a b c], got %v", got)
	}
}

func TestScanWarnings(t *testing.T) {
	e := keyed("bad", 10, "/[broken/")
	res := Scan(ScanInput{Entries: []Entry{e}, Turn: 1, Text: "anything"})
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a warning for the invalid key")
	}
	if !strings.Contains(res.Warnings[0], "entry bad") {
		t.Fatalf("warning should name the entry: %q", res.Warnings[0])
	}
}

func TestScanDoesNotMutateInput(t *testing.T) {
	e := keyed("s", 10, "dragon")
	e.Sticky = 2
	stats := map[string]Stats{"s": {}}

	res := Scan(ScanInput{Entries: []Entry{e}, Stats: stats, Turn: 1, Text: "dragon"})
	if stats["s"].Sticky != 0 {
		t.Fatalf("input stats mutated: %+v", stats["s"])
	}
	if res.Stats["s"].Sticky != 1 {
		t.Fatalf("expected armed and decayed sticky in result, got %d", res.Stats["s"].Sticky)
	}
}
