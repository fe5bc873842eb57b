package worldinfo

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// dormancyWindow is how many turns a Live-Link entry stays active after
	// its last interaction before it needs a fresh trigger to wake.
	dormancyWindow = 10

	// maxScanDepth bounds recursive expansion: content of newly activated
	// entries is re-scanned as additional trigger text at most this many times.
	maxScanDepth = 2
)

// ScanInput carries everything one activation pass needs. The tracker never
// mutates any of these values.
type ScanInput struct {
	Entries   []Entry
	Overrides map[string]bool     // manual enable/disable; false always excludes
	Stats     map[string]Stats    // runtime lifecycle, keyed by entry id
	Pinned    map[string]struct{} // always-include ids
	Selected  map[string]struct{} // ids chosen by an external relevance ranker
	Bypass    bool                // skip keyword scanning entirely
	Turn      int                 // absolute turn counter
	Text      string              // text to scan
}

type ScanResult struct {
	Active   []Entry
	Stats    map[string]Stats
	Warnings []string
}

// Scan decides which entries are active this turn and advances the runtime
// stats. See ScanResult.Active for the ordered output; ScanResult.Stats is a
// fresh map the caller should keep for the next turn.
func Scan(in ScanInput) ScanResult {
	res := ScanResult{Stats: make(map[string]Stats, len(in.Stats))}
	for id, st := range in.Stats {
		res.Stats[id] = st
	}
	warn := func(msg string) { res.Warnings = append(res.Warnings, msg) }

	included := make(map[string]struct{}, len(in.Entries))
	touched := make(map[string]struct{})
	var active []Entry

	include := func(e Entry) {
		if _, dup := included[e.ID]; dup {
			return
		}
		included[e.ID] = struct{}{}
		active = append(active, e)
	}

	eligible := func(e Entry) bool {
		if ov, ok := in.Overrides[e.ID]; ok {
			if !ov {
				return false
			}
		} else if !e.Enabled {
			return false
		}
		return res.Stats[e.ID].Cooldown == 0
	}

	// admit applies the Live-Link dormancy rule before including an entry
	// that matched this pass.
	admit := func(e Entry) {
		if IsLiveLink(e.ID) {
			st := res.Stats[e.ID]
			st.LastActiveTurn = in.Turn
			res.Stats[e.ID] = st
		}
		touched[e.ID] = struct{}{}
		include(e)
	}

	lowered := strings.ToLower(in.Text)

	for _, e := range in.Entries {
		if !eligible(e) {
			continue
		}
		st := res.Stats[e.ID]

		_, pinned := in.Pinned[e.ID]
		_, selected := in.Selected[e.ID]

		switch {
		case selected:
			admit(e)
		case e.Constant || pinned || st.Sticky > 0:
			include(e)
		case IsLiveLink(e.ID) && in.Turn-st.LastActiveTurn <= dormancyWindow:
			// Within the dormancy window a projected entry stays live even
			// without a fresh trigger, preserving continuity.
			if !in.Bypass && entryMatches(e, in.Text, lowered, warn) {
				admit(e)
			} else {
				include(e)
			}
		case !in.Bypass && entryMatches(e, in.Text, lowered, warn):
			admit(e)
		}
	}

	// Recursive expansion: newly activated content can trigger further
	// entries, bounded by maxScanDepth.
	if !in.Bypass {
		fresh := active
		for depth := 0; depth < maxScanDepth && len(fresh) > 0; depth++ {
			var b strings.Builder
			for _, e := range fresh {
				b.WriteString(e.Content)
				b.WriteString("\n")
			}
			scanText := b.String()
			scanLower := strings.ToLower(scanText)

			before := len(active)
			for _, e := range in.Entries {
				if _, done := included[e.ID]; done {
					continue
				}
				if !eligible(e) {
					continue
				}
				if IsLiveLink(e.ID) {
					st := res.Stats[e.ID]
					if in.Turn-st.LastActiveTurn > dormancyWindow && !entryMatches(e, scanText, scanLower, warn) {
						continue
					}
				}
				if entryMatches(e, scanText, scanLower, warn) {
					admit(e)
				}
			}
			fresh = active[before:]
		}
	}

	byID := make(map[string]Entry, len(in.Entries))
	for _, e := range in.Entries {
		byID[e.ID] = e
	}

	// Lifecycle advance: included entries arm their authored durations,
	// touched entries refresh LastActiveTurn, every counter decays by one.
	for id := range included {
		e := byID[id]
		st := res.Stats[id]
		if st.Sticky == 0 && e.Sticky > 0 {
			st.Sticky = e.Sticky
		} else if st.Sticky == 0 && e.Cooldown > 0 {
			st.Cooldown = e.Cooldown
		}
		res.Stats[id] = st
	}
	for id := range touched {
		st := res.Stats[id]
		st.LastActiveTurn = in.Turn
		res.Stats[id] = st
	}
	for id, st := range res.Stats {
		if st.Sticky > 0 {
			st.Sticky--
			if st.Sticky == 0 {
				// Sticky just expired: the authored cooldown, if any, starts.
				if e, ok := byID[id]; ok && e.Cooldown > 0 {
					st.Cooldown = e.Cooldown
				}
			}
		}
		if st.Cooldown > 0 {
			st.Cooldown--
		}
		res.Stats[id] = st
	}

	sort.SliceStable(active, func(i, j int) bool { return active[i].Order < active[j].Order })
	res.Active = active
	return res
}

func entryMatches(e Entry, text, lowered string, warn func(string)) bool {
	if len(e.Keys) == 0 {
		return false
	}
	warnID := func(msg string) { warn(fmt.Sprintf("entry %s: %s", e.ID, msg)) }
	if !matchAnyKey(e.Keys, text, lowered, warnID) {
		return false
	}
	if len(e.SecondaryKeys) > 0 {
		return matchAnyKey(e.SecondaryKeys, text, lowered, warnID)
	}
	return true
}
