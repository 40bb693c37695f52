// Package query turns the find-in-files form fields into a
// QueryDescriptor and the option map sent to the search backend.
package query

import (
	"path"
	"strings"

	"github.com/duydb2/cloud9/internal/model"
)

// Operation is the backend operation name for search-in-files.
const Operation = "codesearch"

type ScopeMode int

const (
	ScopeProject ScopeMode = iota
	ScopeSelection
)

func (s ScopeMode) String() string {
	if s == ScopeSelection {
		return "selection"
	}
	return "project"
}

// Fields are the raw values of the find-in-files form.
type Fields struct {
	Pattern       string
	IsRegex       bool
	CaseSensitive bool
	WholeWord     bool
	Replacement   string
	ReplaceAll    bool
	FilePatterns  string

	Scope       ScopeMode
	ProjectPath string // e.g. "/workspace"
	Selection   string // selected tree path, file or folder
}

// Build assembles a descriptor. ok is false when nothing should be
// submitted: an empty pattern, or a selection scope without a selection.
func Build(f Fields) (d model.QueryDescriptor, ok bool) {
	if f.Pattern == "" {
		return d, false
	}

	scope := f.ProjectPath
	if f.Scope == ScopeSelection {
		if f.Selection == "" {
			return d, false
		}
		scope = selectionFolder(f.Selection)
	}

	d = model.QueryDescriptor{
		Pattern:       f.Pattern,
		IsRegex:       f.IsRegex,
		CaseSensitive: f.CaseSensitive,
		WholeWord:     f.WholeWord,
		ReplaceAll:    f.ReplaceAll,
		ScopePath:     scope,
		FilePatterns:  strings.TrimSpace(f.FilePatterns),
	}
	// Text left in the replace field is never sent unless replacing.
	if f.ReplaceAll {
		d.Replacement = f.Replacement
	}
	return d, true
}

// selectionFolder returns the folder to search for a tree selection. A
// selected file (last element has an extension) searches its folder.
func selectionFolder(p string) string {
	p = strings.TrimSuffix(p, "/")
	if strings.Contains(path.Base(p), ".") {
		return path.Dir(p)
	}
	return p
}

// SelectionLabel renders the label of the "selection" scope choice.
func SelectionLabel(selection string) string {
	if selection == "" {
		return "Selection"
	}
	name := path.Base(selectionFolder(selection))
	if r := []rune(name); len(r) > 25 {
		name = string(r[:22]) + "..."
	}
	return "Selection ( " + name + " )"
}

// EscapeNewlines escapes newlines for the line oriented transport.
func EscapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}

// UnescapeNewlines is the inverse of EscapeNewlines.
func UnescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// Options renders the option map sent with a codesearch request.
func Options(d model.QueryDescriptor) map[string]string {
	replacement := ""
	if d.ReplaceAll {
		replacement = d.Replacement
	}
	return map[string]string{
		"query":         EscapeNewlines(d.Pattern),
		"needle":        d.Pattern,
		"pattern":       d.FilePatterns,
		"casesensitive": flag01(d.CaseSensitive),
		"regexp":        flag01(d.IsRegex),
		"replaceAll":    flagBool(d.ReplaceAll),
		"replacement":   replacement,
		"wholeword":     flagBool(d.WholeWord),
	}
}

// Parse rebuilds a descriptor from a request's scope path and options.
func Parse(scope string, opts map[string]string) model.QueryDescriptor {
	pattern := opts["needle"]
	if pattern == "" {
		pattern = UnescapeNewlines(opts["query"])
	}
	d := model.QueryDescriptor{
		Pattern:       pattern,
		IsRegex:       truthy(opts["regexp"]),
		CaseSensitive: truthy(opts["casesensitive"]),
		WholeWord:     truthy(opts["wholeword"]),
		ReplaceAll:    truthy(opts["replaceAll"]),
		ScopePath:     scope,
		FilePatterns:  opts["pattern"],
	}
	if d.ReplaceAll {
		d.Replacement = opts["replacement"]
	}
	return d
}

func flag01(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func flagBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
