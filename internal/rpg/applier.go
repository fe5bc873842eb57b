package rpg

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type ApplyResult struct {
	DB            *Database
	Notifications []string
	Logs          []string
}

// Apply runs a batch of actions against a deep copy of db; the input is
// never mutated. Semantics are best-effort: a bad table index, an
// out-of-range row or an unparseable value skips that single action with a
// warning and the batch continues, since the model may hallucinate
// references to rows that no longer exist.
func Apply(db *Database, actions []Action) ApplyResult {
	res := ApplyResult{DB: db.Copy()}

	for i, a := range actions {
		if a.Table < 0 || a.Table >= len(res.DB.Tables) {
			res.Logs = append(res.Logs, fmt.Sprintf("action %d: %s: table index %d out of range", i, a.Kind, a.Table))
			continue
		}
		table := &res.DB.Tables[a.Table]

		var err error
		switch a.Kind {
		case ActionInsert:
			err = res.applyInsert(table, a)
		case ActionUpdate:
			err = res.applyUpdate(table, a)
		case ActionDelete:
			err = res.applyDelete(table, a)
		default:
			err = fmt.Errorf("unknown action kind %q", a.Kind)
		}
		if err != nil {
			res.Logs = append(res.Logs, fmt.Sprintf("action %d: %s: %v", i, a.Kind, err))
		}
	}

	res.DB.UpdatedAt = time.Now()
	return res
}

func (r *ApplyResult) applyInsert(table *Table, a Action) error {
	row := make([]any, len(table.Columns)+1)
	row[0] = NewRowID()
	for i := range table.Columns {
		row[i+1] = ""
	}
	for key, val := range a.Values {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(table.Columns) {
			r.Logs = append(r.Logs, fmt.Sprintf("insertRow: table %q: ignoring column key %q", table.Name, key))
			continue
		}
		SetCell(row, idx, val)
	}
	table.Rows = append(table.Rows, row)

	if first := firstValue(row); first != "" {
		r.Notifications = append(r.Notifications, fmt.Sprintf("%s: added %q", table.Name, first))
	} else {
		r.Notifications = append(r.Notifications, fmt.Sprintf("%s: new record", table.Name))
	}
	r.Logs = append(r.Logs, fmt.Sprintf("insertRow: table %q row %s", table.Name, RowID(row)))
	return nil
}

func (r *ApplyResult) applyUpdate(table *Table, a Action) error {
	if a.Row < 0 || a.Row >= len(table.Rows) {
		return fmt.Errorf("row index %d out of range", a.Row)
	}
	row := table.Rows[a.Row]
	for key, val := range a.Values {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(table.Columns) || idx+1 >= len(row) {
			r.Logs = append(r.Logs, fmt.Sprintf("updateRow: table %q: ignoring column key %q", table.Name, key))
			continue
		}
		old := CellAt(row, idx)
		SetCell(row, idx, val)
		if formatCell(old) != formatCell(val) && !timestampLabel(table.Columns[idx].Label) {
			r.Notifications = append(r.Notifications,
				fmt.Sprintf("%s (%s): %s ➝ %s", table.Name, table.Columns[idx].Label, formatCell(old), formatCell(val)))
		}
	}
	r.Logs = append(r.Logs, fmt.Sprintf("updateRow: table %q row %d", table.Name, a.Row))
	return nil
}

func (r *ApplyResult) applyDelete(table *Table, a Action) error {
	if a.Row < 0 || a.Row >= len(table.Rows) {
		return fmt.Errorf("row index %d out of range", a.Row)
	}
	removed := table.Rows[a.Row]
	table.Rows = append(table.Rows[:a.Row], table.Rows[a.Row+1:]...)

	if first := firstValue(removed); first != "" {
		r.Notifications = append(r.Notifications, fmt.Sprintf("%s: removed %q", table.Name, first))
	} else {
		r.Notifications = append(r.Notifications, fmt.Sprintf("%s: record removed", table.Name))
	}
	r.Logs = append(r.Logs, fmt.Sprintf("deleteRow: table %q row %d", table.Name, a.Row))
	return nil
}

// firstValue returns the first populated column value of a stored row.
func firstValue(row []any) string {
	if len(row) == 0 {
		return ""
	}
	for _, cell := range row[1:] {
		if s := formatCell(cell); s != "" {
			return s
		}
	}
	return ""
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// timestampLabel reports whether a column looks like a bookkeeping timestamp;
// value churn there is not worth a user-facing notification.
func timestampLabel(label string) bool {
	l := strings.ToLower(label)
	return strings.Contains(l, "time") || strings.Contains(l, "date") || strings.Contains(l, "时间")
}
