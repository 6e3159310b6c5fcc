package models

import "time"

// Change kinds emitted after a successful inventory mutation.
const (
	ChangeFlossAdded     = "floss.added"
	ChangeFlossAdjusted  = "floss.adjusted"
	ChangeFlossRemoved   = "floss.removed"
	ChangePatternCreated = "pattern.created"
	ChangePatternDeleted = "pattern.deleted"
)

// ChangeEvent describes one mutation of a user's floss or pattern store.
type ChangeEvent struct {
	Kind       string    `json:"kind"`
	UserID     string    `json:"user_id"`
	Subject    string    `json:"subject"` // floss code or pattern ID
	OccurredAt time.Time `json:"occurred_at"`
}
