package llm

import (
	"context"
	"sync"

	"focustrack/ports"
)

// MockClassifier is a mock classifier for testing
type MockClassifier struct {
	Result       *ports.ClassifyResult // Set this for testing
	Err          error                 // Set this to simulate errors
	Availability bool

	mu    sync.Mutex
	calls []ports.ClassifyRequest
}

func (m *MockClassifier) Available(ctx context.Context) bool {
	return m.Availability
}

func (m *MockClassifier) Classify(ctx context.Context, req ports.ClassifyRequest) (*ports.ClassifyResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Calls returns a copy of the requests seen so far.
func (m *MockClassifier) Calls() []ports.ClassifyRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.ClassifyRequest, len(m.calls))
	copy(out, m.calls)
	return out
}
