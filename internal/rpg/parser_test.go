package rpg

import (
	"reflect"
	"testing"
)

func TestParseEditBlock(t *testing.T) {
	t.Run("no block present", func(t *testing.T) {
		if got := ParseEditBlock("just some narration"); got != nil {
			t.Fatalf("expected nil, got %#v", got)
		}
	})

	t.Run("full command set", func(t *testing.T) {
		raw := "Narration first.\n<tableEdit>\n" +
			"insertRow(0, {\"0\": \"Slime\", \"1\": 10})\n" +
			"updateRow(0, 1, {\"1\": 5})\n" +
			"deleteRow(1, 2)\n" +
			"</tableEdit>\nTrailing text."
		got := ParseEditBlock(raw)
		want := []Action{
			{Kind: ActionInsert, Table: 0, Values: map[string]any{"0": "Slime", "1": float64(10)}},
			{Kind: ActionUpdate, Table: 0, Row: 1, Values: map[string]any{"1": float64(5)}},
			{Kind: ActionDelete, Table: 1, Row: 2},
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("unexpected actions:\n got %#v\nwant %#v", got, want)
		}
	})

	t.Run("comment wrappers stripped", func(t *testing.T) {
		raw := "<tableEdit>\n<!-- insertRow(0, {\"0\": \"Goblin\"}) -->\n</tableEdit>"
		got := ParseEditBlock(raw)
		if len(got) != 1 || got[0].Kind != ActionInsert {
			t.Fatalf("expected one insert, got %#v", got)
		}
		if got[0].Values["0"] != "Goblin" {
			t.Fatalf("unexpected values: %#v", got[0].Values)
		}
	})

	t.Run("line comment prefix stripped", func(t *testing.T) {
		raw := "<tableEdit>\n// insertRow(0, {\"0\": \"Wisp\"})\n</tableEdit>"
		got := ParseEditBlock(raw)
		if len(got) != 1 || got[0].Values["0"] != "Wisp" {
			t.Fatalf("expected one insert, got %#v", got)
		}
	})

	t.Run("code fences stripped", func(t *testing.T) {
		raw := "<tableEdit>\n```\ndeleteRow(0, 0)\n```\n</tableEdit>"
		got := ParseEditBlock(raw)
		if len(got) != 1 || got[0].Kind != ActionDelete {
			t.Fatalf("expected one delete, got %#v", got)
		}
	})

	t.Run("missing end tag", func(t *testing.T) {
		raw := "<tableEdit>\ninsertRow(0, {\"0\": \"x\"})"
		if got := ParseEditBlock(raw); len(got) != 1 {
			t.Fatalf("expected parse to tolerate a missing end tag, got %#v", got)
		}
	})

	t.Run("single quotes and bare values", func(t *testing.T) {
		raw := "<tableEdit>\ninsertRow(0, {'0': 'Old Mill', '1': true, '2': null, 3: ready})\n</tableEdit>"
		got := ParseEditBlock(raw)
		if len(got) != 1 {
			t.Fatalf("expected one action, got %#v", got)
		}
		want := map[string]any{"0": "Old Mill", "1": true, "2": nil, "3": "ready"}
		if !reflect.DeepEqual(got[0].Values, want) {
			t.Fatalf("unexpected values: %#v", got[0].Values)
		}
	})

	t.Run("apostrophe inside single-quoted string", func(t *testing.T) {
		raw := "<tableEdit>\ninsertRow(0, {'0': 'the dragon's lair'})\n</tableEdit>"
		got := ParseEditBlock(raw)
		if len(got) != 1 {
			t.Fatalf("expected one action, got %#v", got)
		}
		if got[0].Values["0"] != "the dragon's lair" {
			t.Fatalf("unexpected value: %#v", got[0].Values["0"])
		}
	})

	t.Run("escaped quote matches strict form", func(t *testing.T) {
		strict := ParseEditBlock("<tableEdit>insertRow(0, {\"0\": \"it's here\"})</tableEdit>")
		relaxed := ParseEditBlock("<tableEdit>insertRow(0, {'0': 'it\\'s here'})</tableEdit>")
		if len(strict) != 1 || len(relaxed) != 1 {
			t.Fatalf("expected one action each, got %d and %d", len(strict), len(relaxed))
		}
		if !reflect.DeepEqual(strict[0].Values, relaxed[0].Values) {
			t.Fatalf("quoting forms disagree: %#v vs %#v", strict[0].Values, relaxed[0].Values)
		}
	})

	t.Run("braces inside quoted strings", func(t *testing.T) {
		raw := "<tableEdit>\nupdateRow(0, 0, {\"0\": \"use {curly} notation\"})\n</tableEdit>"
		got := ParseEditBlock(raw)
		if len(got) != 1 {
			t.Fatalf("expected one action, got %#v", got)
		}
		if got[0].Values["0"] != "use {curly} notation" {
			t.Fatalf("unexpected value: %#v", got[0].Values["0"])
		}
	})

	t.Run("nested object value", func(t *testing.T) {
		raw := "<tableEdit>\ninsertRow(0, {\"0\": {\"hp\": 10, \"tags\": [\"a\", \"b\"]}})\n</tableEdit>"
		got := ParseEditBlock(raw)
		if len(got) != 1 {
			t.Fatalf("expected one action, got %#v", got)
		}
		inner, ok := got[0].Values["0"].(map[string]any)
		if !ok {
			t.Fatalf("expected nested object, got %#v", got[0].Values["0"])
		}
		if inner["hp"] != float64(10) {
			t.Fatalf("unexpected nested value: %#v", inner)
		}
	})

	t.Run("malformed command skipped", func(t *testing.T) {
		raw := "<tableEdit>\ninsertRow(oops\nupdateRow(0, 0, {\"0\": \"ok\"})\n</tableEdit>"
		got := ParseEditBlock(raw)
		if len(got) != 1 || got[0].Kind != ActionUpdate {
			t.Fatalf("expected only the valid command, got %#v", got)
		}
	})

	t.Run("loose index separators", func(t *testing.T) {
		raw := "<tableEdit>\nupdateRow( 0 , \"1\" , {\"0\": \"v\"})\n</tableEdit>"
		got := ParseEditBlock(raw)
		if len(got) != 1 || got[0].Table != 0 || got[0].Row != 1 {
			t.Fatalf("expected table 0 row 1, got %#v", got)
		}
	})

	t.Run("escape sequences in strings", func(t *testing.T) {
		raw := "<tableEdit>insertRow(0, {\"0\": \"line one\\nline two\"})</tableEdit>"
		got := ParseEditBlock(raw)
		if len(got) != 1 {
			t.Fatalf("expected one action, got %#v", got)
		}
		if got[0].Values["0"] != "line one\nline two" {
			t.Fatalf("unexpected value: %q", got[0].Values["0"])
		}
	})
}
