package models

// CategorizationSource indicates how a project assignment was produced.
type CategorizationSource string

// Categorization source constants.
const (
	SourceRule       CategorizationSource = "rule"
	SourceClassifier CategorizationSource = "classifier"
	SourceManual     CategorizationSource = "manual"
)

// Categorization is the outcome of one categorization attempt. Rule matches
// always carry confidence 1.0; classifier results carry the model's own
// score and are only produced when it clears the configured floor.
type Categorization struct {
	ProjectID  string               `json:"project_id"`
	Confidence float64              `json:"confidence"`
	Source     CategorizationSource `json:"source"`
}
