package stream

import "strings"

// Buffer is the append-only results document of one panel. Lines are
// only ever added at the end, through an Appender.
type Buffer struct {
	lines []string
}

func (b *Buffer) Len() int {
	return len(b.lines)
}

// Lines returns a copy of the document lines.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// LinesFrom returns a copy of the lines starting at index from.
func (b *Buffer) LinesFrom(from int) []string {
	if from < 0 {
		from = 0
	}
	if from >= len(b.lines) {
		return nil
	}
	out := make([]string, len(b.lines)-from)
	copy(out, b.lines[from:])
	return out
}

func (b *Buffer) String() string {
	return strings.Join(b.lines, "\n")
}

func (b *Buffer) append(lines ...string) {
	b.lines = append(b.lines, lines...)
}
