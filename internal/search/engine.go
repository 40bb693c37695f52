package search

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/duydb2/cloud9/internal/model"
)

// DefaultMaxFileSize skips files larger than this.
const DefaultMaxFileSize = 4 << 20

// sniffLen is how much of a file is checked for NUL bytes.
const sniffLen = 8000

var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

// Engine searches the files below a root directory.
type Engine struct {
	root        string
	MaxFileSize int64
}

func New(root string) *Engine {
	return &Engine{root: root, MaxFileSize: DefaultMaxFileSize}
}

func (e *Engine) Root() string {
	return e.root
}

// Run searches dir, which must lie inside the engine root, and calls emit
// with one "path:line:text" row per matching line. Paths are relative to
// the root with forward slashes. With ReplaceAll set, matching files are
// rewritten and the rows show the replaced text.
func (e *Engine) Run(ctx context.Context, dir string, d model.QueryDescriptor, emit func(row string)) (model.Summary, error) {
	var summary model.Summary

	m, err := Compile(d)
	if err != nil {
		return summary, err
	}
	globs := ParseGlobs(d.FilePatterns)

	err = filepath.WalkDir(dir, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == dir {
				return walkErr
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		if entry.IsDir() {
			if p != dir && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") {
			return nil
		}

		rel, err := filepath.Rel(e.root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !globs.Match(rel) {
			return nil
		}

		info, err := entry.Info()
		if err != nil || (e.MaxFileSize > 0 && info.Size() > e.MaxFileSize) {
			return nil
		}

		hits, err := e.searchFile(p, rel, info.Mode().Perm(), m, emit)
		if err != nil {
			return err
		}
		if hits > 0 {
			summary.Count += hits
			summary.FileCount++
		}
		return nil
	})
	return summary, err
}

func (e *Engine) searchFile(p, rel string, perm fs.FileMode, m *Matcher, emit func(string)) (int, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return 0, nil
	}
	if bytes.IndexByte(data[:min(len(data), sniffLen)], 0) >= 0 {
		return 0, nil
	}

	lines := strings.Split(string(data), "\n")
	hits, rewritten := 0, false
	for i, line := range lines {
		if i == len(lines)-1 && line == "" {
			break
		}
		if !m.Match(line) {
			continue
		}
		hits++
		if out, changed := m.Replace(line); changed {
			lines[i] = out
			line = out
			rewritten = true
		}
		emit(rel + ":" + strconv.Itoa(i+1) + ":" + strings.TrimSuffix(line, "\r"))
	}

	if rewritten {
		if err := os.WriteFile(p, []byte(strings.Join(lines, "\n")), perm); err != nil {
			return hits, err
		}
	}
	return hits, nil
}
