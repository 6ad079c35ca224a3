package domain

// TagQualityScore aggregates the per-signal quality metrics for one tag.
// All scores are bounded to [0,1]; Overall is a weighted combination of
// the four sub-scores.
type TagQualityScore struct {
	Tag                  string  `json:"tag"`
	Consistency          float64 `json:"consistency"`           // Formatting distance from normalized form
	Ambiguity            float64 `json:"ambiguity"`             // Spread of comparably-weighted similar tags
	RelationshipStrength float64 `json:"relationship_strength"` // Graph edge evidence
	Feedback             float64 `json:"feedback"`              // Reviewer approve/reject history
	Overall              float64 `json:"overall"`
}
