package rpg

type ActionKind string

const (
	ActionInsert ActionKind = "insertRow"
	ActionUpdate ActionKind = "updateRow"
	ActionDelete ActionKind = "deleteRow"
)

// Action is one mutation command recovered from a model reply. Values maps
// column-index-as-string ("0", "1", ...) to a scalar value; the model always
// addresses columns 0-based, never the stored row-id slot.
type Action struct {
	Kind   ActionKind
	Table  int
	Row    int
	Values map[string]any
}
