package models

// ActionMode is a sticky view preset narrowing the visible list.
type ActionMode string

const (
	ActionNone         ActionMode = ""
	ActionFollowUpsDue ActionMode = "followups"
	ActionStaleApplied ActionMode = "staleApplied"
)

// SortKey selects the ordering of the visible list.
type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortFollowUpSoon SortKey = "followupSoon"
)

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	return k == SortNewest || k == SortOldest || k == SortFollowUpSoon
}

// StatusAll is the status-filter sentinel that matches every record.
const StatusAll = "All"

// Query is the full view state used to derive the visible list.
type Query struct {
	Text   string     `json:"q"`
	Status string     `json:"status"`
	Sort   SortKey    `json:"sort"`
	Mode   ActionMode `json:"mode"`
}

// DefaultQuery shows everything, newest first.
func DefaultQuery() Query {
	return Query{Status: StatusAll, Sort: SortNewest}
}
