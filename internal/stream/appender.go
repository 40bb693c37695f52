package stream

import (
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/duydb2/cloud9/internal/model"
)

// SummaryMarker starts the line that terminates a job's output.
const SummaryMarker = "Results:"

// ErrMalformedSummary is returned when the summary line cannot be decoded.
// The non-summary lines of the chunk are still appended.
var ErrMalformedSummary = errors.New("malformed results summary")

// Appender appends streamed chunks to a Buffer. A chunk tail without a
// terminating newline is held back until the next chunk or Flush.
type Appender struct {
	partial string
}

// Append appends the lines of chunk to buf. When the chunk ends with the
// summary line, the summary is returned and the footer is appended.
func (a *Appender) Append(buf *Buffer, chunk string) (*model.Summary, error) {
	if chunk == "" {
		return nil, nil
	}

	data := a.partial + chunk
	a.partial = ""

	terminated := strings.HasSuffix(data, "\n")
	lines := strings.Split(strings.TrimSuffix(data, "\n"), "\n")
	if !terminated {
		tail := lines[len(lines)-1]
		if !completeSummary(tail) {
			a.partial = tail
			lines = lines[:len(lines)-1]
		}
	}
	return appendLines(buf, lines)
}

// Flush appends a held back partial line, if any.
func (a *Appender) Flush(buf *Buffer) (*model.Summary, error) {
	if a.partial == "" {
		return nil, nil
	}
	tail := a.partial
	a.partial = ""
	return appendLines(buf, []string{tail})
}

// Reset drops a held back partial line.
func (a *Appender) Reset() {
	a.partial = ""
}

func appendLines(buf *Buffer, lines []string) (*model.Summary, error) {
	var (
		summary *model.Summary
		err     error
	)
	if n := len(lines); n > 0 && strings.HasPrefix(lines[n-1], SummaryMarker) {
		s, perr := ParseSummary(lines[n-1])
		lines = lines[:n-1]
		if perr != nil {
			err = perr
		} else {
			summary = &s
		}
	}

	buf.append(lines...)
	if summary != nil {
		buf.append("", FormatSummary(summary.Count, summary.FileCount), "", "")
	}
	return summary, err
}

// ParseSummary decodes a "Results: {json}" line.
func ParseSummary(line string) (model.Summary, error) {
	idx := strings.IndexByte(line, ' ')
	if !strings.HasPrefix(line, SummaryMarker) || idx < 0 {
		return model.Summary{}, fmt.Errorf("%w: %q", ErrMalformedSummary, line)
	}
	payload := []byte(strings.TrimSpace(line[idx+1:]))

	count, err := jsonparser.GetInt(payload, "count")
	if err != nil {
		return model.Summary{}, fmt.Errorf("%w: count: %v", ErrMalformedSummary, err)
	}
	files, err := jsonparser.GetInt(payload, "filecount")
	if err != nil {
		return model.Summary{}, fmt.Errorf("%w: filecount: %v", ErrMalformedSummary, err)
	}
	return model.Summary{Count: int(count), FileCount: int(files)}, nil
}

// completeSummary reports whether an unterminated tail is already a whole
// summary line.
func completeSummary(tail string) bool {
	if !strings.HasPrefix(tail, SummaryMarker) {
		return false
	}
	_, err := ParseSummary(tail)
	return err == nil
}
