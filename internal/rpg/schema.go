package rpg

import (
	"encoding/json"
	"strconv"
)

// Model-facing views. Row ids stay hidden; columns and tables are addressed
// by their current 0-based indices, re-derived on every call so a deleted
// table never leaves stale numbering behind.

type schemaColumn struct {
	ColumnIndex int        `json:"columnIndex"`
	Label       string     `json:"label"`
	Type        ColumnType `json:"type"`
}

type schemaTable struct {
	TableIndex int            `json:"tableIndex"`
	TableName  string         `json:"tableName"`
	Columns    []schemaColumn `json:"columns"`
}

type dataRow struct {
	RowIndex int            `json:"rowIndex"`
	Values   map[string]any `json:"values"`
}

type dataTable struct {
	TableIndex int       `json:"tableIndex"`
	TableName  string    `json:"tableName"`
	Rows       []dataRow `json:"rows"`
}

// SchemaString renders the column layout of every table.
func SchemaString(db *Database) string {
	out := make([]schemaTable, len(db.Tables))
	for ti, t := range db.Tables {
		st := schemaTable{TableIndex: ti, TableName: t.Name, Columns: make([]schemaColumn, len(t.Columns))}
		for ci, c := range t.Columns {
			st.Columns[ci] = schemaColumn{ColumnIndex: ci, Label: c.Label, Type: c.Type}
		}
		out[ti] = st
	}
	return marshalIndent(out)
}

// DataString renders current row contents keyed by column index.
func DataString(db *Database) string {
	out := make([]dataTable, len(db.Tables))
	for ti, t := range db.Tables {
		dt := dataTable{TableIndex: ti, TableName: t.Name, Rows: make([]dataRow, len(t.Rows))}
		for ri, row := range t.Rows {
			dt.Rows[ri] = dataRow{RowIndex: ri, Values: ModelValues(t, row)}
		}
		out[ti] = dt
	}
	return marshalIndent(out)
}

// ModelValues maps column-index-as-string to cell value, the same shape the
// edit-block commands use.
func ModelValues(t Table, row []any) map[string]any {
	values := make(map[string]any, len(t.Columns))
	for ci := range t.Columns {
		values[strconv.Itoa(ci)] = CellAt(row, ci)
	}
	return values
}

func marshalIndent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
