package searchd

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/duydb2/cloud9/internal/model"
)

// job is one running or finished search. Its output only ever grows, so a
// byte offset identifies a position in it for as long as the job exists.
type job struct {
	id     string
	query  model.QueryDescriptor
	cancel context.CancelFunc

	mu       sync.Mutex
	out      strings.Builder
	done     bool
	finished time.Time
}

func (j *job) write(s string) {
	j.mu.Lock()
	j.out.WriteString(s)
	j.mu.Unlock()
}

func (j *job) finish(at time.Time) {
	j.mu.Lock()
	j.done = true
	j.finished = at
	j.mu.Unlock()
}

// read returns at most max bytes of output starting at offset. An offset
// past the end is clamped to the end.
func (j *job) read(offset, max int) model.PollResult {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := j.out.String()
	if offset < 0 {
		offset = 0
	}
	if offset > len(out) {
		offset = len(out)
	}
	end := len(out)
	if max > 0 && end-offset > max {
		end = cut(out, offset, offset+max)
	}
	return model.PollResult{
		Data:    out[offset:end],
		Offset:  offset,
		Next:    end,
		Pending: !j.done || end < len(out),
	}
}

// cut picks a chunk end no later than limit. Chunks end after a newline
// when one is in range and never split a UTF-8 sequence, which would not
// survive JSON encoding.
func cut(out string, offset, limit int) int {
	if i := strings.LastIndexByte(out[offset:limit], '\n'); i >= 0 {
		return offset + i + 1
	}
	end := limit
	for end > offset && !utf8.RuneStart(out[end]) {
		end--
	}
	if end == offset {
		return limit
	}
	return end
}

func (j *job) expired(now time.Time, retention time.Duration) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done && now.Sub(j.finished) > retention
}
