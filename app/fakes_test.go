package app

import (
	"context"
	"sync"
	"time"

	"focustrack/models"
	"focustrack/ports"

	"github.com/google/uuid"
)

// fakeActivityRepo is an in-memory ActivityRepository recording all writes.
type fakeActivityRepo struct {
	mu             sync.Mutex
	inserted       []models.Activity
	durationCalls  int
	projectUpdates int
	insertErr      error
	storedTotal    int64
}

func (f *fakeActivityRepo) Insert(ctx context.Context, activity *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	activity.ID = uuid.New()
	f.inserted = append(f.inserted, *activity)
	return nil
}

func (f *fakeActivityRepo) UpdateDuration(ctx context.Context, id uuid.UUID, seconds int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durationCalls++
	for i := range f.inserted {
		if f.inserted[i].ID == id {
			f.inserted[i].DurationSeconds = seconds
		}
	}
	return nil
}

func (f *fakeActivityRepo) UpdateProject(ctx context.Context, id uuid.UUID, projectID *string, confidence *float64, manual bool, note *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projectUpdates++
	for i := range f.inserted {
		if f.inserted[i].ID == id {
			f.inserted[i].ProjectID = projectID
			f.inserted[i].Confidence = confidence
			f.inserted[i].IsManual = manual
			f.inserted[i].Note = note
		}
	}
	return nil
}

func (f *fakeActivityRepo) QueryRange(ctx context.Context, from, to time.Time) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Activity, len(f.inserted))
	copy(out, f.inserted)
	return out, nil
}

func (f *fakeActivityRepo) TotalSecondsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.storedTotal, nil
}

func (f *fakeActivityRepo) insertedCopy() []models.Activity {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Activity, len(f.inserted))
	copy(out, f.inserted)
	return out
}

// fakeProjectRepo serves a fixed project list.
type fakeProjectRepo struct {
	mu       sync.Mutex
	projects []models.Project
}

func (f *fakeProjectRepo) List(ctx context.Context, activeOnly bool) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for _, p := range f.projects {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjectRepo) Get(ctx context.Context, id string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == id {
			p := f.projects[i]
			return &p, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeProjectRepo) Save(ctx context.Context, project *models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == project.ID {
			f.projects[i] = *project
			return nil
		}
	}
	f.projects = append(f.projects, *project)
	return nil
}

func (f *fakeProjectRepo) Deactivate(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects[i].IsActive = false
			return nil
		}
	}
	return errNotFound
}

func (f *fakeProjectRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

// fakeRuleRepo is an in-memory RuleRepository.
type fakeRuleRepo struct {
	mu    sync.Mutex
	rules []models.CategoryRule
}

func (f *fakeRuleRepo) List(ctx context.Context) ([]models.CategoryRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.CategoryRule, len(f.rules))
	copy(out, f.rules)
	sortRules(out)
	return out, nil
}

func (f *fakeRuleRepo) Insert(ctx context.Context, rule *models.CategoryRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rule.ID = uuid.New()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeRuleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return nil
}

// stubClassifier is a controllable Classifier. When gate is non-nil,
// Classify blocks until the gate is closed. resultByApp, when set, takes
// precedence over result and keys answers on the request's app name.
type stubClassifier struct {
	availability bool
	result       *ports.ClassifyResult
	resultByApp  map[string]*ports.ClassifyResult
	err          error
	gate         chan struct{}

	mu    sync.Mutex
	calls int
}

func (s *stubClassifier) Available(ctx context.Context) bool {
	return s.availability
}

func (s *stubClassifier) Classify(ctx context.Context, req ports.ClassifyRequest) (*ports.ClassifyResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.gate != nil {
		<-s.gate
	}
	if s.resultByApp != nil {
		return s.resultByApp[req.AppName], s.err
	}
	return s.result, s.err
}

func (s *stubClassifier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var errNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }
