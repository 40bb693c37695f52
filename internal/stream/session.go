package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/duydb2/cloud9/internal/model"
)

// Options configure a Session.
type Options struct {
	// Header writes a "Searching for ..." line before each search.
	Header bool
	// Timeout fails a task that is still polling after this long. Zero
	// disables the limit.
	Timeout time.Duration
	// MaxPollFailures fails a task after this many consecutive failed
	// polls. Zero keeps polling forever.
	MaxPollFailures int

	now func() time.Time
}

// Session is one results panel: it owns the output buffer and at most one
// active streaming task.
type Session struct {
	mu      sync.Mutex
	opts    Options
	buf     Buffer
	app     Appender
	task    *Task
	nextID  uint64
	version uint64
}

func NewSession(opts Options) *Session {
	if opts.now == nil {
		opts.now = time.Now
	}
	return &Session{opts: opts}
}

// Start begins streaming job h into the buffer. A task still polling is
// cancelled first so two jobs never interleave in the same buffer.
func (s *Session) Start(parent context.Context, h model.JobHandle, d model.QueryDescriptor) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.task != nil && s.task.state == StatePolling {
		s.task.finish(StateCancelled, nil)
	}
	s.app.Reset()

	ctx, cancel := context.WithCancel(parent)
	s.nextID++
	t := &Task{
		ID:      s.nextID,
		Handle:  h,
		Query:   d,
		ctx:     ctx,
		cancel:  cancel,
		state:   StatePolling,
		started: s.opts.now(),
	}
	s.task = t

	if s.opts.Header {
		s.buf.append(FormatHeader(d))
		s.version++
	}
	return t
}

// Deliver hands the result of a poll to the session. It returns ErrStale
// for a task that is no longer polling or a result that does not start at
// the task's current offset, and ErrMalformedSummary (non-fatal) when the
// footer could not be rendered.
func (s *Session) Deliver(t *Task, res model.PollResult) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(t) {
		return t.status(), ErrStale
	}
	if res.Offset != t.offset {
		return t.status(), fmt.Errorf("%w: offset %d, expected %d", ErrStale, res.Offset, t.offset)
	}
	if err := s.checkTimeout(t); err != nil {
		return t.status(), err
	}

	t.failures = 0

	var warn error
	if res.Data != "" {
		summary, err := s.app.Append(&s.buf, res.Data)
		s.note(t, summary, err, &warn)
		t.offset += len(res.Data)
		s.version++
	}

	// A response has been received, so no pending data means done.
	if !res.Pending {
		summary, err := s.app.Flush(&s.buf)
		s.note(t, summary, err, &warn)
		s.version++
		t.finish(StateCompleted, nil)
	}
	return t.status(), warn
}

// DeliverError records a failed poll. The failure counts as an empty
// chunk unless it trips the consecutive failure or overall time limit.
func (s *Session) DeliverError(t *Task, pollErr error) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(t) {
		return t.status(), ErrStale
	}
	if err := s.checkTimeout(t); err != nil {
		return t.status(), err
	}

	t.failures++
	if s.opts.MaxPollFailures > 0 && t.failures >= s.opts.MaxPollFailures {
		err := fmt.Errorf("%w (%d): %v", ErrTooManyFailures, t.failures, pollErr)
		t.finish(StateFailed, err)
		s.app.Reset()
		return t.status(), err
	}
	return t.status(), nil
}

// Expire fails the active task if it has exceeded the timeout.
func (s *Session) Expire(t *Task) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(t) {
		return t.status(), nil
	}
	return t.status(), s.checkTimeout(t)
}

// Cancel stops the active task. It returns the cancelled task, or nil when
// nothing was polling.
func (s *Session) Cancel() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.task
	if t == nil || t.state != StatePolling {
		return nil
	}
	t.finish(StateCancelled, nil)
	s.app.Reset()
	return t
}

// CancelTask stops t if it is still the active polling task.
func (s *Session) CancelTask(t *Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(t) {
		return false
	}
	t.finish(StateCancelled, nil)
	s.app.Reset()
	return true
}

// Status returns a snapshot of t.
func (s *Session) Status(t *Task) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.status()
}

// Active returns the most recently started task, or nil.
func (s *Session) Active() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

func (s *Session) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Lines()
}

func (s *Session) LinesFrom(from int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.LinesFrom(from)
}

func (s *Session) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Version changes every time the buffer is appended to.
func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Session) current(t *Task) bool {
	return t != nil && t == s.task && t.state == StatePolling
}

func (s *Session) checkTimeout(t *Task) error {
	if s.opts.Timeout <= 0 || s.opts.now().Sub(t.started) <= s.opts.Timeout {
		return nil
	}
	t.finish(StateFailed, ErrTimeout)
	s.app.Reset()
	return ErrTimeout
}

func (s *Session) note(t *Task, summary *model.Summary, err error, warn *error) {
	if summary != nil {
		t.summary = summary
	}
	if err != nil && *warn == nil {
		*warn = err
	}
}
