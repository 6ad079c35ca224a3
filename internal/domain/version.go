package domain

import "time"

// TagVersion is one entry in a tag's append-only version history.
// Version numbers per tag start at 1 and increase by exactly 1 with no
// gaps, assigned at append time under a single-writer model.
type TagVersion struct {
	ID        string    `json:"id"`
	TagName   string    `json:"tag_name"`
	Version   int       `json:"version"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
