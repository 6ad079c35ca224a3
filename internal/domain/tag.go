package domain

import "time"

// Category is a coarse genre bucket assigned to a canonical tag.
type Category string

// Known categories. Inference rules in the vocab package decide which one
// applies; Other is the fallback.
const (
	CategoryMetal        Category = "metal"
	CategoryRock         Category = "rock"
	CategoryFusion       Category = "fusion"
	CategoryExperimental Category = "experimental"
	CategoryElectronic   Category = "electronic"
	CategoryOther        Category = "other"
)

// Tag is a canonical vocabulary entry.
// Exactly one tag in an alias cluster carries Canonical=true; the others
// reference it via CanonicalID. Tags are never hard-deleted; a "delete"
// marks the tag excluded so its history survives.
type Tag struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`            // Display form: "Black Metal"
	NormalizedName string    `json:"normalized_name"` // Canonical form: "black metal"
	Category       Category  `json:"category,omitempty"`
	Aliases        []string  `json:"aliases,omitempty"` // Raw spellings observed for this tag
	Frequency      int       `json:"frequency"`         // Observed occurrence count
	Canonical      bool      `json:"canonical"`
	CanonicalID    string    `json:"canonical_id,omitempty"` // Set when Canonical=false
	Excluded       bool      `json:"excluded,omitempty"`     // Soft delete marker
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// HasAlias reports whether raw is already recorded as an alias.
func (t *Tag) HasAlias(raw string) bool {
	for _, a := range t.Aliases {
		if a == raw {
			return true
		}
	}
	return false
}

// AddAlias records a raw spelling for this tag. Idempotent.
func (t *Tag) AddAlias(raw string) {
	if raw == "" || raw == t.NormalizedName || t.HasAlias(raw) {
		return
	}
	t.Aliases = append(t.Aliases, raw)
}

// AlbumTags is the ingestion boundary record: one album's raw tag strings,
// already split on list separators but not yet normalized.
type AlbumTags struct {
	AlbumID int      `json:"album_id"`
	Title   string   `json:"title,omitempty"`
	Artist  string   `json:"artist,omitempty"`
	Year    int      `json:"year,omitempty"`
	RawTags []string `json:"raw_tags"`
}

// UnmappedTag tracks a raw tag string that no alias or decomposition rule
// covered. Surfaced to curators for manual resolution.
type UnmappedTag struct {
	RawValue   string    `json:"raw_value"`
	AlbumCount int       `json:"album_count"`
	FirstSeen  time.Time `json:"first_seen"`
}
