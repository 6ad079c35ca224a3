package search

import (
	"github.com/albumatlas/albumatlas-server/internal/domain"
)

// TagDocument is the indexed representation of a vocabulary tag.
type TagDocument struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`    // Normalized form: "black metal"
	Aliases   []string `json:"aliases"` // Raw spellings observed for the tag
	Category  string   `json:"category"`
	Frequency int      `json:"frequency"`
}

// FromTag builds a search document from a vocabulary tag.
func FromTag(t *domain.Tag) *TagDocument {
	return &TagDocument{
		ID:        t.ID,
		Name:      t.NormalizedName,
		Aliases:   t.Aliases,
		Category:  string(t.Category),
		Frequency: t.Frequency,
	}
}

// ToMap converts the document to a map so indexed field names match the
// mapping exactly.
func (d *TagDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":        d.ID,
		"name":      d.Name,
		"category":  d.Category,
		"frequency": d.Frequency,
	}
	if len(d.Aliases) > 0 {
		m["aliases"] = d.Aliases
	}
	return m
}
