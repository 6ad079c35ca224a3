package domain

// ConfidenceLevel buckets a correction suggestion's similarity score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// CorrectionSuggestion proposes replacing a raw tag with a better form.
type CorrectionSuggestion struct {
	Original   string          `json:"original"`
	Suggested  string          `json:"suggested"`
	Similarity float64         `json:"similarity"`
	Confidence ConfidenceLevel `json:"confidence"`
}

// ValidationIssue flags a problem with a proposed correction.
// An empty issue list means the correction is valid.
type ValidationIssue struct {
	Code    string `json:"code"` // "equivalent" or "unrelated"
	Message string `json:"message"`
}
