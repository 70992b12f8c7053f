package ports

import "context"

// ClassifyRequest carries one sample plus the names of the known projects
// the classifier may choose from.
type ClassifyRequest struct {
	AppName     string   `json:"app_name"`
	WindowTitle string   `json:"window_title,omitempty"`
	URL         string   `json:"url,omitempty"`
	Projects    []string `json:"projects"`
}

// ClassifyResult is the classifier's best guess: a free-text project name
// and a confidence score in [0.0, 1.0].
type ClassifyResult struct {
	Project    string  `json:"project"`
	Confidence float64 `json:"confidence"`
}

// Classifier is a best-effort, cost-bearing categorization oracle. A nil
// result is not an error, it is "no signal".
type Classifier interface {
	// Available probes whether the classifier can be called at all.
	// Callers must not probe per-sample; implementations may cache.
	Available(ctx context.Context) bool

	Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResult, error)
}
