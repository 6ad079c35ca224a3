package domain

import "time"

// ChangeType is the kind of vocabulary mutation a TagChange proposes.
type ChangeType string

const (
	ChangeRename ChangeType = "rename"
	ChangeMerge  ChangeType = "merge"
	ChangeDelete ChangeType = "delete"
	ChangeAdd    ChangeType = "add"
)

// ChangeStatus is the review state of a TagChange.
type ChangeStatus string

const (
	ChangePending  ChangeStatus = "pending"
	ChangeApproved ChangeStatus = "approved"
	ChangeRejected ChangeStatus = "rejected"
)

// TagChange is a proposed vocabulary mutation moving through review.
// Only pending changes may transition to approved or rejected. History is
// append-only: approving or rejecting moves the record out of the pending
// set but never deletes it. Rolling back an approved change creates a new
// pending change with old/new swapped, a compensating action rather than a
// history edit.
type TagChange struct {
	ID         string       `json:"id"`
	Type       ChangeType   `json:"type"`
	OldValue   string       `json:"old_value"`
	NewValue   string       `json:"new_value"`
	Status     ChangeStatus `json:"status"`
	Reviewer   string       `json:"reviewer,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty"`
}

// IsPending reports whether the change is still awaiting review.
func (c *TagChange) IsPending() bool {
	return c.Status == ChangePending
}

// Inverse returns a new pending change that compensates for this one:
// old and new values swapped, notes referencing the original id.
func (c *TagChange) Inverse(id string) *TagChange {
	return &TagChange{
		ID:        id,
		Type:      c.Type,
		OldValue:  c.NewValue,
		NewValue:  c.OldValue,
		Status:    ChangePending,
		Notes:     "rollback of " + c.ID,
		CreatedAt: time.Now(),
	}
}
