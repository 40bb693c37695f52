package stream

import (
	"context"
	"errors"
	"time"

	"github.com/duydb2/cloud9/internal/model"
)

// State is the lifecycle state of a streaming task.
type State int

const (
	StateIdle State = iota
	StatePolling
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

var (
	// ErrStale is returned for a delivery to a task that is no longer the
	// active polling task, or for an already consumed range.
	ErrStale = errors.New("stale delivery discarded")
	// ErrTimeout fails a task that polled for longer than Options.Timeout.
	ErrTimeout = errors.New("search timed out")
	// ErrTooManyFailures fails a task after Options.MaxPollFailures
	// consecutive failed polls.
	ErrTooManyFailures = errors.New("too many failed polls")
)

// Task is the handle of one streaming job. Its mutable state is owned by
// the Session that started it; read it with Session.Status.
type Task struct {
	ID     uint64
	Handle model.JobHandle
	Query  model.QueryDescriptor

	ctx    context.Context
	cancel context.CancelFunc

	state    State
	offset   int
	failures int
	started  time.Time
	summary  *model.Summary
	err      error
}

// Context is cancelled once the task leaves the polling state.
func (t *Task) Context() context.Context {
	return t.ctx
}

// Started is when the task began polling.
func (t *Task) Started() time.Time {
	return t.started
}

// Status is a snapshot of a task.
type Status struct {
	TaskID   uint64
	Job      model.JobHandle
	State    State
	Offset   int
	Failures int
	Summary  *model.Summary
	Err      error // cause of a Failed state
}

func (t *Task) status() Status {
	return Status{
		TaskID:   t.ID,
		Job:      t.Handle,
		State:    t.state,
		Offset:   t.offset,
		Failures: t.failures,
		Summary:  t.summary,
		Err:      t.err,
	}
}

func (t *Task) finish(state State, err error) {
	t.state = state
	t.err = err
	t.cancel()
}
