package rpg

import (
	"fmt"
	"strings"

	"lorelink/internal/worldinfo"
)

// Projected entries sort after hand-authored lore by default.
const liveLinkOrder = 900

// LiveLinkEntryID derives the lore-entry id for a table row. The derivation
// is deterministic so re-projection after a mutation is idempotent: unchanged
// rows yield identical entries, removed rows drop out.
func LiveLinkEntryID(tableID, rowID string) string {
	return worldinfo.LiveLinkPrefix + tableID + "_" + rowID
}

// Project synthesizes lore entries for every Live-Link-enabled table. One
// entry per row whose key-column value is non-empty: the key-column value is
// the trigger key, the content is a bulleted rendering of every non-empty
// column.
func Project(db *Database) []worldinfo.Entry {
	var entries []worldinfo.Entry
	for _, t := range db.Tables {
		kc := t.LiveLink.KeyColumn
		if !t.LiveLink.Enabled || kc < 0 || kc >= len(t.Columns) {
			continue
		}
		for _, row := range t.Rows {
			if len(row) != len(t.Columns)+1 {
				continue
			}
			key := formatCell(CellAt(row, kc))
			if key == "" {
				continue
			}

			var b strings.Builder
			fmt.Fprintf(&b, "### %s\n", t.Name)
			for i, col := range t.Columns {
				if v := formatCell(CellAt(row, i)); v != "" {
					fmt.Fprintf(&b, "- %s: %s\n", col.Label, v)
				}
			}

			entries = append(entries, worldinfo.Entry{
				ID:       LiveLinkEntryID(t.ID, RowID(row)),
				Keys:     []string{key},
				Content:  b.String(),
				Enabled:  true,
				Order:    liveLinkOrder,
				Position: worldinfo.PositionBeforeChar,
			})
		}
	}
	return entries
}

// FilterForPrompt reduces a database to the rows whose projected entries are
// currently active, bounding the payload of the mutation prompt. Tables
// without Live-Link pass through whole. The result is a copy; the
// authoritative database handed to Apply is never filtered.
func FilterForPrompt(db *Database, active map[string]struct{}) *Database {
	out := db.Copy()
	for ti := range out.Tables {
		t := &out.Tables[ti]
		if !t.LiveLink.Enabled {
			continue
		}
		kept := t.Rows[:0]
		for _, row := range t.Rows {
			if _, ok := active[LiveLinkEntryID(t.ID, RowID(row))]; ok {
				kept = append(kept, row)
			}
		}
		t.Rows = kept
	}
	return out
}
