package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Tracker owns the calling -> success | failed state machine.
//
// Tasks live in an in-memory index keyed by correlation id and every change
// is mirrored to the Repository. The index is the source of truth for
// transitions; a task missing from it (issued before a restart, or
// forgotten) is loaded from the repository on first use.
//
// All public methods are thread-safe.
type Tracker struct {
	repo Repository

	tasks map[string]*Task
	mu    sync.RWMutex

	now    func() time.Time
	logger Logger
}

// NewTracker creates a tracker over repo.
func NewTracker(repo Repository) *Tracker {
	return &Tracker{
		repo:   repo,
		tasks:  make(map[string]*Task),
		now:    func() time.Time { return time.Now().UTC() },
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the tracker.
func (t *Tracker) SetLogger(logger Logger) {
	t.logger = logger
}

// SetClock replaces the time source. Intended for tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// Create records a new calling task and persists it. If only the
// persistence step fails, the task is still tracked in memory and returned
// together with the error.
func (t *Tracker) Create(ctx context.Context, clientID, correlationID, kind, description string) (Task, error) {
	t.mu.Lock()
	if _, ok := t.tasks[correlationID]; ok {
		t.mu.Unlock()
		return Task{}, fmt.Errorf("%w: %s", ErrTaskExists, correlationID)
	}
	now := t.now()
	rec := &Task{
		ClientID:      clientID,
		CorrelationID: correlationID,
		Kind:          kind,
		State:         StateCalling,
		Description:   description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	t.tasks[correlationID] = rec
	t.mu.Unlock()

	row := *rec
	id, err := t.repo.Create(ctx, &row)
	if err != nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		if errors.Is(err, ErrTaskExists) {
			delete(t.tasks, correlationID)
			return Task{}, err
		}
		// The indexed task stays so a response can still complete it.
		return *rec, fmt.Errorf("persisting task: %w", err)
	}

	t.mu.Lock()
	rec.ID = id
	out := *rec
	t.mu.Unlock()

	t.logger.Debug("task created", "request_id", correlationID, "kind", kind, "client_id", clientID)
	return out, nil
}

// MarkSuccess moves a calling task to success.
func (t *Tracker) MarkSuccess(ctx context.Context, correlationID, description string) error {
	return t.transition(ctx, correlationID, StateSuccess, description)
}

// MarkFailed moves a calling task to failed. The description embeds both
// the error code and message.
func (t *Tracker) MarkFailed(ctx context.Context, correlationID string, code int, msg string) error {
	return t.transition(ctx, correlationID, StateFailed, FailureDescription(code, msg))
}

// FailureDescription formats a device-reported failure.
func FailureDescription(code int, msg string) string {
	return fmt.Sprintf("failed (error code %d): %s", code, msg)
}

func (t *Tracker) transition(ctx context.Context, correlationID, state, description string) error {
	if err := t.load(ctx, correlationID); err != nil {
		return err
	}

	t.mu.Lock()
	rec := t.tasks[correlationID]
	if rec == nil {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, correlationID)
	}
	if rec.Terminal() {
		current := rec.State
		t.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrTaskTerminal, correlationID, current)
	}
	rec.State = state
	rec.Description = description
	rec.UpdatedAt = t.now()
	t.mu.Unlock()

	n, err := t.repo.Update(ctx, correlationID, state, description)
	if err != nil {
		return fmt.Errorf("persisting task %s: %w", correlationID, err)
	}
	if n == 0 {
		// Another writer finalised the row first; memory already holds ours.
		t.logger.Warn("task row not updated", "request_id", correlationID, "state", state)
	}

	t.logger.Info("task finished", "request_id", correlationID, "state", state)
	return nil
}

// UpdateDescription rewrites a task's description without touching its
// state. Allowed in any state.
func (t *Tracker) UpdateDescription(ctx context.Context, correlationID, description string) error {
	if err := t.load(ctx, correlationID); err != nil {
		return err
	}

	t.mu.Lock()
	if rec := t.tasks[correlationID]; rec != nil {
		rec.Description = description
		rec.UpdatedAt = t.now()
	}
	t.mu.Unlock()

	if _, err := t.repo.UpdateDescription(ctx, correlationID, description); err != nil {
		return fmt.Errorf("persisting task %s: %w", correlationID, err)
	}
	return nil
}

// load pulls a task into the index if it is not already there.
func (t *Tracker) load(ctx context.Context, correlationID string) error {
	t.mu.RLock()
	_, ok := t.tasks[correlationID]
	t.mu.RUnlock()
	if ok {
		return nil
	}

	rec, err := t.repo.GetByCorrelationID(ctx, correlationID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if _, ok := t.tasks[correlationID]; !ok {
		t.tasks[correlationID] = rec
	}
	t.mu.Unlock()
	return nil
}

// Get returns a copy of the task.
func (t *Tracker) Get(ctx context.Context, correlationID string) (Task, error) {
	if err := t.load(ctx, correlationID); err != nil {
		return Task{}, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.tasks[correlationID]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, correlationID)
	}
	return *rec, nil
}

// List returns persisted tasks matching f.
func (t *Tracker) List(ctx context.Context, f Filter) ([]Task, error) {
	return t.repo.List(ctx, f)
}

// Pending returns persisted tasks still calling that were created more
// than olderThan ago, newest first. It reads the repository so tasks issued
// before a restart or evicted by Forget are included.
func (t *Tracker) Pending(ctx context.Context, olderThan time.Duration, limit int) ([]Task, error) {
	t.mu.RLock()
	cutoff := t.now().Add(-olderThan)
	t.mu.RUnlock()

	return t.repo.List(ctx, Filter{State: StateCalling, CreatedBefore: cutoff, Limit: limit})
}

// Discard drops a task from the index and the repository. The publisher
// uses it to withdraw a task whose command never reached the broker.
func (t *Tracker) Discard(ctx context.Context, correlationID string) error {
	t.mu.Lock()
	delete(t.tasks, correlationID)
	t.mu.Unlock()

	if _, err := t.repo.Delete(ctx, correlationID); err != nil {
		return fmt.Errorf("discarding task %s: %w", correlationID, err)
	}
	t.logger.Debug("task discarded", "request_id", correlationID)
	return nil
}

// Forget drops tasks last updated more than olderThan ago from the index,
// whatever their state. They remain in the repository and are loaded again
// on demand. Returns the number removed.
func (t *Tracker) Forget(olderThan time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-olderThan)
	removed := 0
	for id, rec := range t.tasks {
		if rec.UpdatedAt.Before(cutoff) {
			delete(t.tasks, id)
			removed++
		}
	}
	return removed
}
