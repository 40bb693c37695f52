package search

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/duydb2/cloud9/internal/model"
)

var (
	ErrEmptyPattern   = errors.New("empty search pattern")
	ErrInvalidPattern = errors.New("invalid search pattern")
)

// matchTimeout bounds a single line match so one pathological pattern
// cannot stall a job.
const matchTimeout = 250 * time.Millisecond

// Matcher applies a compiled query to single lines. Patterns use
// ECMAScript regexp syntax, the dialect users type into the find form.
type Matcher struct {
	re          *regexp2.Regexp
	replace     bool
	replacement string
}

func Compile(d model.QueryDescriptor) (*Matcher, error) {
	if d.Pattern == "" {
		return nil, ErrEmptyPattern
	}

	expr := d.Pattern
	if !d.IsRegex {
		expr = regexp2.Escape(expr)
	}
	if d.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	if !d.CaseSensitive {
		opts |= regexp2.IgnoreCase
	}

	re, err := regexp2.Compile(expr, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	re.MatchTimeout = matchTimeout

	m := &Matcher{re: re, replace: d.ReplaceAll, replacement: d.Replacement}
	if !d.IsRegex {
		// Literal searches get a literal replacement.
		m.replacement = strings.ReplaceAll(d.Replacement, "$", "$$")
	}
	return m, nil
}

func (m *Matcher) Match(line string) bool {
	ok, err := m.re.MatchString(line)
	return err == nil && ok
}

// Ranges returns the [start, end) rune offsets of every match in line.
func (m *Matcher) Ranges(line string) [][2]int {
	var out [][2]int
	match, err := m.re.FindStringMatch(line)
	for match != nil && err == nil {
		if match.Length > 0 {
			out = append(out, [2]int{match.Index, match.Index + match.Length})
		}
		match, err = m.re.FindNextMatch(match)
	}
	return out
}

// Replace rewrites every match in line. changed is false when the matcher
// is not replacing or nothing matched.
func (m *Matcher) Replace(line string) (out string, changed bool) {
	if !m.replace {
		return line, false
	}
	out, err := m.re.Replace(line, m.replacement, -1, -1)
	if err != nil {
		return line, false
	}
	return out, out != line
}

// Globs is a list of include patterns matched against file base names.
// An empty list includes everything.
type Globs []string

// ParseGlobs splits a "*.go, *.js" style list.
func ParseGlobs(s string) Globs {
	var g Globs
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			g = append(g, p)
		}
	}
	return g
}

func (g Globs) Match(rel string) bool {
	if len(g) == 0 {
		return true
	}
	base := path.Base(rel)
	for _, p := range g {
		if ok, _ := path.Match(p, base); ok {
			return true
		}
		if strings.Contains(p, "/") {
			if ok, _ := path.Match(p, rel); ok {
				return true
			}
		}
	}
	return false
}
