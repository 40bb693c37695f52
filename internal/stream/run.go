package stream

import (
	"context"
	"errors"
	"time"

	"github.com/duydb2/cloud9/internal/model"
)

// DefaultInterval is the delay between two polls of a job.
const DefaultInterval = 200 * time.Millisecond

type Submitter interface {
	Submit(ctx context.Context, d model.QueryDescriptor) (model.JobHandle, error)
}

type Poller interface {
	Poll(ctx context.Context, h model.JobHandle, offset int) (model.PollResult, error)
}

type Canceller interface {
	Cancel(ctx context.Context, h model.JobHandle) error
}

// Begin submits d and starts streaming it into s. A failed submission
// leaves the session untouched.
func Begin(ctx context.Context, sub Submitter, s *Session, d model.QueryDescriptor) (*Task, error) {
	h, err := sub.Submit(ctx, d)
	if err != nil {
		return nil, err
	}
	return s.Start(ctx, h, d), nil
}

// Update is reported after every poll handled by Run.
type Update struct {
	Status Status
	Err    error // failed poll, malformed summary or terminal failure
}

// Run polls t every interval until it reaches a terminal state. Cancelling
// ctx cancels the task. The returned error is the cause of a Failed state,
// or ctx.Err() when ctx ended the task.
func Run(ctx context.Context, p Poller, s *Session, t *Task, interval time.Duration, notify func(Update)) (Status, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.CancelTask(t)
			return s.Status(t), ctx.Err()
		case <-t.Context().Done():
			if s.CancelTask(t) {
				// The parent context of the task ended.
				return s.Status(t), t.Context().Err()
			}
			st := s.Status(t)
			return st, st.Err
		case <-ticker.C:
		}

		st := s.Status(t)
		if st.State != StatePolling {
			return st, st.Err
		}

		res, err := p.Poll(t.Context(), t.Handle, st.Offset)
		var derr error
		if err != nil {
			st, derr = s.DeliverError(t, err)
			if derr == nil {
				derr = err
			}
		} else {
			st, derr = s.Deliver(t, res)
		}
		if errors.Is(derr, ErrStale) && st.State == StatePolling {
			// Out of order result; the next poll asks for the same offset.
			derr = nil
		}
		if notify != nil {
			notify(Update{Status: st, Err: derr})
		}
		if st.State.Terminal() {
			return st, st.Err
		}
	}
}
