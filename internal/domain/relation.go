package domain

// RelationType classifies an edge between two tags.
type RelationType string

const (
	RelationParent   RelationType = "parent"
	RelationRelated  RelationType = "related"
	RelationRegional RelationType = "regional"
	RelationFusion   RelationType = "fusion"
	RelationModifier RelationType = "modifier"
)

// TagRelation is a weighted edge between two tags.
// Strength reflects co-occurrence and similarity evidence in [0,1].
// Relations are recomputed wholesale when the corpus changes materially,
// never patched incrementally.
type TagRelation struct {
	Tag1ID   string       `json:"tag1_id"`
	Tag2ID   string       `json:"tag2_id"`
	Type     RelationType `json:"type"`
	Strength float64      `json:"strength"`
}
