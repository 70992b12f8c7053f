package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"focustrack/internal"
	"focustrack/internal/errors"
	"focustrack/models"
	"focustrack/ports"
)

// TrackerOptions holds the segmentation engine's tunables.
type TrackerOptions struct {
	SampleInterval    time.Duration
	HeartbeatInterval time.Duration

	// CheckpointSeconds is how much accumulated duration may pass between
	// durability checkpoints of the live activity.
	CheckpointSeconds int64

	// Title-similarity policy: two differing titles still belong to the
	// same activity when one contains the other, or when they share at
	// least SimilarSharedWords words longer than SimilarWordMinLen runes.
	SimilarWordMinLen  int
	SimilarSharedWords int
}

// DefaultTrackerOptions returns the stock 2s cadence and 30s checkpoints.
func DefaultTrackerOptions() TrackerOptions {
	return TrackerOptions{
		SampleInterval:     2 * time.Second,
		HeartbeatInterval:  2 * time.Second,
		CheckpointSeconds:  30,
		SimilarWordMinLen:  3,
		SimilarSharedWords: 2,
	}
}

// Tracker is the activity segmentation engine. It consumes the sampling
// stream, decides activity boundaries, keeps exactly one live activity,
// drives periodic durability checkpoints and triggers asynchronous
// categorization on each new activity.
//
// All live-activity state is guarded by one mutex; classifier results are
// applied under the same mutex with a stale check (app name captured at
// dispatch time vs. the live activity's), never by cancellation.
type Tracker struct {
	opts        TrackerOptions
	source      ports.SamplingSource
	activities  ports.ActivityRepository
	categorizer *Categorizer
	logger      *internal.Logger

	mu              sync.Mutex
	current         *models.Activity
	lastSample      *models.Sample
	running         bool
	sinceCheckpoint int64
	todayTotal      int64
	day             time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewTracker creates a segmentation engine.
func NewTracker(source ports.SamplingSource, activities ports.ActivityRepository, categorizer *Categorizer, opts TrackerOptions, logger *internal.Logger) *Tracker {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Tracker{
		opts:        opts,
		source:      source,
		activities:  activities,
		categorizer: categorizer,
		logger:      logger,
		subs:        make(map[int]chan Event),
	}
}

// Start begins sampling and heartbeat ticking. No-op when already running.
// One sample is taken synchronously before the first tick.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.stopCh = make(chan struct{})
	t.day = midnight(time.Now())

	total, err := t.activities.TotalSecondsBetween(ctx, t.day, t.day.Add(24*time.Hour))
	if err != nil {
		t.logger.Warn("failed to load today's total: %v", err)
		total = 0
	}
	t.todayTotal = total
	t.mu.Unlock()

	t.logger.Info("tracker started (sample %v, heartbeat %v)", t.opts.SampleInterval, t.opts.HeartbeatInterval)

	sample, err := t.source.Sample(ctx)
	if err != nil {
		t.logger.Warn("initial sample failed: %v", err)
		sample = models.IdleSample()
	}
	t.handleSample(ctx, sample)

	t.wg.Add(2)
	go t.sampleLoop(ctx)
	go t.heartbeatLoop(ctx)
}

// Stop cancels both periodic tasks and forces a final checkpoint of the
// live activity, discarding it when its duration is still zero. No-op when
// not running.
func (t *Tracker) Stop(ctx context.Context) {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stopCh)
	t.mu.Unlock()

	t.wg.Wait()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil && t.current.DurationSeconds > 0 {
		t.checkpointLocked(ctx)
	}
	t.current = nil
	t.lastSample = nil
	t.logger.Info("tracker stopped")
}

// IsRunning reports whether the tracking loop is active.
func (t *Tracker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Tracker) sampleLoop(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.opts.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			sample, err := t.source.Sample(ctx)
			if err != nil {
				t.logger.Warn("sampling failed: %v", err)
				sample = models.IdleSample()
			}
			t.handleSample(ctx, sample)
		}
	}
}

func (t *Tracker) heartbeatLoop(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.handleHeartbeat(ctx)
		}
	}
}

// handleSample applies the boundary decision for one sample.
func (t *Tracker) handleSample(ctx context.Context, sample models.Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	if t.isBoundaryLocked(sample) {
		t.startActivityLocked(ctx, sample)
	}
	t.lastSample = &sample
}

// isBoundaryLocked decides whether the sample belongs to a new activity.
func (t *Tracker) isBoundaryLocked(sample models.Sample) bool {
	if t.current == nil {
		return true
	}
	if sample.AppName != t.current.AppName {
		return true
	}
	if sample.WindowTitle != "" && t.current.WindowTitle != "" &&
		!t.similarTitles(t.current.WindowTitle, sample.WindowTitle) {
		return true
	}
	if sample.URL != "" && sample.URL != t.current.URL {
		return true
	}
	return false
}

// similarTitles guards against spurious splits on cosmetic title changes
// (unsaved-changes markers, tab counters). Titles are similar when one
// contains the other, or when they share enough long words.
func (t *Tracker) similarTitles(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return true
	}

	wordsA := make(map[string]bool)
	for _, w := range strings.Fields(la) {
		if len(w) > t.opts.SimilarWordMinLen {
			wordsA[w] = true
		}
	}
	shared := 0
	for _, w := range strings.Fields(lb) {
		if len(w) > t.opts.SimilarWordMinLen && wordsA[w] {
			shared++
			wordsA[w] = false
		}
	}
	return shared >= t.opts.SimilarSharedWords
}

// startActivityLocked checkpoints the old activity and makes a fresh one
// live, then dispatches categorization in the background.
func (t *Tracker) startActivityLocked(ctx context.Context, sample models.Sample) {
	if t.current != nil && t.current.DurationSeconds > 0 {
		t.checkpointLocked(ctx)
	}

	t.current = models.NewActivity(sample)
	t.sinceCheckpoint = 0
	t.logger.Debug("new activity: %s (%s)", sample.AppName, sample.WindowTitle)
	t.publishLocked(EventActivityStarted)

	if t.categorizer != nil && !sample.IsIdle() {
		go t.categorizeAsync(sample)
	}
}

// categorizeAsync runs one categorization attempt and applies the result
// only if the user has not switched to another application meanwhile.
func (t *Tracker) categorizeAsync(sample models.Sample) {
	result := t.categorizer.Categorize(context.Background(), sample.AppName, sample.WindowTitle, sample.URL)
	if result == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Stale results are discarded by comparing application names at
	// completion time, not by cancelling the in-flight call. A manual
	// assignment made while the classifier ran also wins.
	if t.current == nil || t.current.AppName != sample.AppName || t.current.IsManual {
		t.logger.Debug("discarding stale categorization for %s", sample.AppName)
		return
	}

	t.current.AssignProject(result.ProjectID, result.Confidence, false)
	if t.current.Persisted() {
		if err := t.activities.UpdateProject(context.Background(), t.current.ID,
			t.current.ProjectID, t.current.Confidence, false, t.current.Note); err != nil {
			t.logger.Error("failed to persist categorization: %v", err)
		}
	}
	t.publishLocked(EventActivityUpdated)
}

// handleHeartbeat extends the live activity by one tick and drives the
// periodic checkpoint and the daily total.
func (t *Tracker) handleHeartbeat(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || t.current == nil {
		return
	}

	increment := int64(t.opts.HeartbeatInterval / time.Second)
	t.current.DurationSeconds += increment
	t.sinceCheckpoint += increment

	t.rollDayLocked(ctx)
	t.todayTotal += increment

	if t.sinceCheckpoint >= t.opts.CheckpointSeconds {
		t.checkpointLocked(ctx)
	}

	t.publishLocked(EventTodayTotal)
}

// rollDayLocked resets the daily total from storage when midnight passes.
func (t *Tracker) rollDayLocked(ctx context.Context) {
	mid := midnight(time.Now())
	if mid.Equal(t.day) {
		return
	}
	t.day = mid
	total, err := t.activities.TotalSecondsBetween(ctx, mid, mid.Add(24*time.Hour))
	if err != nil {
		t.logger.Warn("failed to recompute today's total: %v", err)
		total = 0
	}
	t.todayTotal = total
}

// checkpointLocked durably writes the live activity: insert on the first
// positive duration, update in place afterwards. Persistence failures are
// logged only; the in-memory state stays authoritative and the next
// checkpoint retries the write.
func (t *Tracker) checkpointLocked(ctx context.Context) {
	if t.current == nil || t.current.DurationSeconds == 0 {
		return
	}

	if !t.current.Persisted() {
		if err := t.activities.Insert(ctx, t.current); err != nil {
			t.logger.Error("activity insert failed: %v", err)
			return
		}
	} else {
		if err := t.activities.UpdateDuration(ctx, t.current.ID, t.current.DurationSeconds); err != nil {
			t.logger.Error("activity update failed: %v", err)
			return
		}
	}
	t.sinceCheckpoint = 0
}

// SetProject assigns a project to the live activity on the user's behalf.
// Manual assignment is authoritative: confidence is recorded as 1.0.
func (t *Tracker) SetProject(ctx context.Context, projectID string, note *string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return errors.NotFound("live activity")
	}

	t.current.AssignProject(projectID, 1.0, true)
	t.current.Note = note

	if t.current.Persisted() {
		if err := t.activities.UpdateProject(ctx, t.current.ID,
			t.current.ProjectID, t.current.Confidence, true, note); err != nil {
			t.logger.Error("failed to persist manual assignment: %v", err)
		}
	}
	t.publishLocked(EventActivityUpdated)
	return nil
}

// ClearProject removes any assignment from the live activity.
func (t *Tracker) ClearProject(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return errors.NotFound("live activity")
	}

	t.current.ClearAssignment()

	if t.current.Persisted() {
		if err := t.activities.UpdateProject(ctx, t.current.ID, nil, nil, false, nil); err != nil {
			t.logger.Error("failed to persist cleared assignment: %v", err)
		}
	}
	t.publishLocked(EventActivityUpdated)
	return nil
}

// CurrentActivity returns a snapshot of the live activity, or nil.
func (t *Tracker) CurrentActivity() *models.Activity {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	snapshot := *t.current
	return &snapshot
}

// TodayTotalSeconds returns the running daily total.
func (t *Tracker) TodayTotalSeconds() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.todayTotal
}

// Subscribe registers an event listener. The returned function removes it.
// Publishing never blocks; slow subscribers miss events.
func (t *Tracker) Subscribe() (<-chan Event, func()) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	id := t.nextSub
	t.nextSub++
	ch := make(chan Event, 16)
	t.subs[id] = ch

	return ch, func() {
		t.subMu.Lock()
		defer t.subMu.Unlock()
		if _, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(ch)
		}
	}
}

func (t *Tracker) publishLocked(kind EventKind) {
	event := Event{
		Kind:              kind,
		TodayTotalSeconds: t.todayTotal,
		At:                time.Now(),
	}
	if t.current != nil {
		snapshot := *t.current
		event.Activity = &snapshot
	}

	t.subMu.Lock()
	defer t.subMu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func midnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
