package rpg

import (
	"time"

	"github.com/google/uuid"
)

type ColumnType string

const (
	ColumnString  ColumnType = "string"
	ColumnNumber  ColumnType = "number"
	ColumnBoolean ColumnType = "boolean"
)

// Column identity for storage purposes is its index in Table.Columns; the
// label is mutable presentation only.
type Column struct {
	Label string     `json:"label"`
	Type  ColumnType `json:"type"`
}

// LiveLink configures projection of a table's rows into lore entries.
// KeyColumn is the column index whose value becomes the entry's trigger key.
type LiveLink struct {
	Enabled   bool `json:"enabled"`
	KeyColumn int  `json:"key_column"`
}

// Table rows are fixed-length: element 0 is a generated opaque row id, never
// shown to the language model, and element i+1 belongs to column i.
type Table struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Columns  []Column `json:"columns"`
	Rows     [][]any  `json:"rows"`
	LiveLink LiveLink `json:"live_link"`
}

type Settings struct {
	TriggerMode    string   `json:"trigger_mode,omitempty"`
	Model          string   `json:"model,omitempty"`
	PromptTemplate string   `json:"prompt_template,omitempty"`
	Pinned         []string `json:"pinned,omitempty"`
}

// Database is an ordered list of tables plus free-text global rules. A
// table's position in Tables is the tableIndex the language model sees;
// deleting a table shifts later indices, and serializers always render the
// current numbering.
type Database struct {
	Tables      []Table   `json:"tables"`
	GlobalRules string    `json:"global_rules,omitempty"`
	Settings    Settings  `json:"settings"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewRowID() string {
	return "row_" + uuid.NewString()
}

// RowID returns the opaque id stored at position 0, or "" for a malformed row.
func RowID(row []any) string {
	if len(row) == 0 {
		return ""
	}
	id, _ := row[0].(string)
	return id
}

// CellAt and SetCell are the single place where the model's 0-based column
// index meets the stored layout (row id at slot 0, column i at slot i+1).
func CellAt(row []any, col int) any {
	if col < 0 || col+1 >= len(row) {
		return nil
	}
	return row[col+1]
}

func SetCell(row []any, col int, v any) {
	if col < 0 || col+1 >= len(row) {
		return
	}
	row[col+1] = v
}

// Copy returns a structurally independent copy of the database. Cell values
// are scalars, so copying each row slice is sufficient.
func (d *Database) Copy() *Database {
	if d == nil {
		return nil
	}
	out := &Database{
		GlobalRules: d.GlobalRules,
		Settings:    d.Settings,
		UpdatedAt:   d.UpdatedAt,
	}
	out.Settings.Pinned = append([]string(nil), d.Settings.Pinned...)
	out.Tables = make([]Table, len(d.Tables))
	for i, t := range d.Tables {
		out.Tables[i] = t.copy()
	}
	return out
}

func (t Table) copy() Table {
	out := t
	out.Columns = append([]Column(nil), t.Columns...)
	out.Rows = make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]any(nil), row...)
	}
	return out
}
