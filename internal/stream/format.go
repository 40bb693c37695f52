package stream

import (
	"fmt"
	"strings"

	"github.com/duydb2/cloud9/internal/model"
	"github.com/duydb2/cloud9/internal/query"
)

const (
	headerPrefix = "Searching for '"
	footerPrefix = "Found "
)

// IsHeader reports whether line was written by FormatHeader.
func IsHeader(line string) bool { return strings.HasPrefix(line, headerPrefix) }

// IsFooter reports whether line was written by FormatSummary.
func IsFooter(line string) bool { return strings.HasPrefix(line, footerPrefix) }

// FormatSummary renders the results footer.
//
// Any positive count is plural and zero is singular ("Found 0 match in 0
// file"). Existing result consumers compare against this exact text.
func FormatSummary(count, filecount int) string {
	matches := " match"
	if count > 0 {
		matches = " matches"
	}
	files := " file"
	if filecount > 0 {
		files = " files"
	}
	return fmt.Sprintf("Found %d%s in %d%s", count, matches, filecount, files)
}

// FormatHeader renders the line written before the results of a search.
// Newlines in the pattern and replacement are escaped so the header stays a
// single buffer line.
func FormatHeader(d model.QueryDescriptor) string {
	var opts []string
	if d.IsRegex {
		opts = append(opts, "regexp")
	}
	if d.CaseSensitive {
		opts = append(opts, "case sensitive")
	}
	if d.WholeWord {
		opts = append(opts, "whole word")
	}

	var b strings.Builder
	b.WriteString(headerPrefix)
	b.WriteString(query.EscapeNewlines(d.Pattern))
	if d.ReplaceAll && d.Replacement != "" {
		b.WriteString("', replaced as '")
		b.WriteString(query.EscapeNewlines(d.Replacement))
	}
	b.WriteString("' in ")
	b.WriteString(d.ScopePath)
	if d.FilePatterns != "" {
		b.WriteString(" [" + d.FilePatterns + "]")
	}
	if len(opts) > 0 {
		b.WriteString(" (" + strings.Join(opts, ", ") + ")")
	}
	return b.String()
}
