// Package lint checks a loaded lorebook and session database for problems
// that would silently weaken activation at runtime: keys that never compile,
// entries that can never trigger, live-link tables that project nothing.
package lint

import (
	"fmt"

	"lorelink/internal/rpg"
	"lorelink/internal/worldinfo"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDuplicateID    = "duplicate_entry_id"
	codeInvalidKey     = "invalid_key"
	codeNoTriggers     = "no_trigger_keys"
	codeBadLifecycle   = "negative_lifecycle_value"
	codeUnknownPinned  = "unknown_pinned_id"
	codeDuplicateTable = "duplicate_table_id"
	codeBadKeyColumn   = "live_link_key_column_out_of_range"
	codeMalformedRow   = "malformed_row"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Entry    string
	Table    string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Run inspects the entry pool and, when db is non-nil, the table database.
func Run(entries []worldinfo.Entry, db *rpg.Database) *Report {
	issues := make([]Issue, 0)

	seen := make(map[string]struct{}, len(entries))
	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		ids[e.ID] = struct{}{}
		if _, dup := seen[e.ID]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateID,
				Message:  "entry id appears more than once in the pool",
				Entry:    e.ID,
			})
		}
		seen[e.ID] = struct{}{}
		issues = append(issues, checkEntry(e)...)
	}

	if db != nil {
		issues = append(issues, checkDatabase(db, ids)...)
	}

	return &Report{Issues: issues}
}

func checkEntry(e worldinfo.Entry) []Issue {
	var issues []Issue

	for _, key := range append(append([]string(nil), e.Keys...), e.SecondaryKeys...) {
		if err := worldinfo.CheckKey(key); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeInvalidKey,
				Message:  err.Error(),
				Entry:    e.ID,
			})
		}
	}

	if !e.Constant && len(e.Keys) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeNoTriggers,
			Message:  "entry has no primary keys and is not constant, so it can only activate by explicit selection",
			Entry:    e.ID,
		})
	}

	if e.Sticky < 0 || e.Cooldown < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeBadLifecycle,
			Message:  fmt.Sprintf("sticky=%d cooldown=%d must not be negative", e.Sticky, e.Cooldown),
			Entry:    e.ID,
		})
	}

	return issues
}

func checkDatabase(db *rpg.Database, pool map[string]struct{}) []Issue {
	var issues []Issue

	tables := make(map[string]struct{}, len(db.Tables))
	for _, t := range db.Tables {
		if _, dup := tables[t.ID]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateTable,
				Message:  "table id appears more than once",
				Table:    t.ID,
			})
		}
		tables[t.ID] = struct{}{}

		if t.LiveLink.Enabled && (t.LiveLink.KeyColumn < 0 || t.LiveLink.KeyColumn >= len(t.Columns)) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeBadKeyColumn,
				Message:  fmt.Sprintf("key column %d is outside the table's %d columns", t.LiveLink.KeyColumn, len(t.Columns)),
				Table:    t.ID,
			})
		}

		for i, row := range t.Rows {
			if len(row) != len(t.Columns)+1 || rpg.RowID(row) == "" {
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeMalformedRow,
					Message:  fmt.Sprintf("row %d does not have an id plus one value per column", i),
					Table:    t.ID,
				})
			}
		}
	}

	for _, id := range db.Settings.Pinned {
		if _, ok := pool[id]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeUnknownPinned,
				Message:  "pinned id matches no entry in the pool",
				Entry:    id,
			})
		}
	}

	return issues
}
