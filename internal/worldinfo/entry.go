package worldinfo

import "strings"

// Position controls where an entry's content is placed when the prompt is
// assembled.
type Position string

const (
	PositionBeforeChar Position = "before_char"
	PositionAfterChar  Position = "after_char"
)

// LiveLinkPrefix marks entries synthesized from table rows. Their ids follow
// the form "tblore_<tableID>_<rowID>" so re-projection is idempotent.
const LiveLinkPrefix = "tblore_"

type Entry struct {
	ID            string
	Keys          []string
	SecondaryKeys []string
	Content       string
	Constant      bool
	Enabled       bool
	Sticky        int
	Cooldown      int
	Order         int
	Position      Position
}

// Stats tracks the per-entry runtime lifecycle. Created lazily on first
// activation; orphaned stats for removed entries are harmless.
type Stats struct {
	Sticky         int
	Cooldown       int
	LastActiveTurn int
}

func IsLiveLink(id string) bool {
	return strings.HasPrefix(id, LiveLinkPrefix)
}
