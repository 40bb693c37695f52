package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/duydb2/cloud9/internal/model"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func runSearch(t *testing.T, root string, d model.QueryDescriptor) ([]string, model.Summary) {
	t.Helper()
	var rows []string
	summary, err := New(root).Run(context.Background(), root, d, func(row string) {
		rows = append(rows, row)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sort.Strings(rows)
	return rows, summary
}

func TestSearchPlainText(t *testing.T) {
	root := writeTree(t, map[string]string{
		"build.log":      "line 1: compiling\nline 2: error: undefined reference\nline 3: done\n",
		"src/test.log":   "running tests\nFAIL: TestFoo error: assertion failed\n",
		"src/ok.log":     "all good\n",
		"src/upper.log":  "Error: uppercase\n",
		".git/HEAD":      "error in hidden dir\n",
		"src/.hidden":    "error in hidden file\n",
		"node_modules/x": "error in dependency\n",
	})

	rows, summary := runSearch(t, root, model.QueryDescriptor{Pattern: "error", CaseSensitive: true})

	want := []string{
		"build.log:2:line 2: error: undefined reference",
		"src/test.log:2:FAIL: TestFoo error: assertion failed",
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %q, want %q", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("rows[%d] = %q, want %q", i, rows[i], want[i])
		}
	}
	if summary.Count != 2 || summary.FileCount != 2 {
		t.Errorf("summary = %+v, want 2 matches in 2 files", summary)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.txt": "Error: file not found\nerror: missing dep\nwarning: unused var\n",
	})

	_, summary := runSearch(t, root, model.QueryDescriptor{Pattern: "error"})
	if summary.Count != 2 || summary.FileCount != 1 {
		t.Errorf("summary = %+v, want 2 matches in 1 file", summary)
	}
}

func TestSearchRegex(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.txt": "Error: file not found\nerror: missing dep\nwarning: unused var\n",
	})

	_, summary := runSearch(t, root, model.QueryDescriptor{
		Pattern:       `[Ee]rror:\s+\w+`,
		IsRegex:       true,
		CaseSensitive: true,
	})
	if summary.Count != 2 {
		t.Errorf("Count = %d, want 2", summary.Count)
	}
}

func TestSearchLiteralIsNotRegex(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.txt": "a.b\naxb\n(a)\n",
	})

	rows, _ := runSearch(t, root, model.QueryDescriptor{Pattern: "a.b"})
	if len(rows) != 1 || rows[0] != "a.txt:1:a.b" {
		t.Errorf("rows = %q, want only the literal match", rows)
	}

	rows, _ = runSearch(t, root, model.QueryDescriptor{Pattern: "(a)"})
	if len(rows) != 1 || rows[0] != "a.txt:3:(a)" {
		t.Errorf("rows = %q, want only the literal match", rows)
	}
}

func TestSearchWholeWord(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.go": "foo := 1\nfoobar := 2\nx.foo()\n",
	})

	_, summary := runSearch(t, root, model.QueryDescriptor{Pattern: "foo", WholeWord: true, CaseSensitive: true})
	if summary.Count != 2 {
		t.Errorf("Count = %d, want 2", summary.Count)
	}
}

func TestSearchFilePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":        "needle\n",
		"web/app.js":     "needle\n",
		"web/app.min.js": "needle\n",
		"README.md":      "needle\n",
	})

	tests := []struct {
		patterns string
		want     int
	}{
		{"", 4},
		{"*.go", 1},
		{"*.go, *.js", 3},
		{"web/*.min.js", 1},
		{"*.txt", 0},
	}
	for _, tt := range tests {
		_, summary := runSearch(t, root, model.QueryDescriptor{Pattern: "needle", FilePatterns: tt.patterns})
		if summary.FileCount != tt.want {
			t.Errorf("FilePatterns %q: FileCount = %d, want %d", tt.patterns, summary.FileCount, tt.want)
		}
	}
}

func TestSearchSkipsBinaryFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"text.txt": "needle\n",
		"blob.bin": "needle\x00\x01\x02",
	})

	_, summary := runSearch(t, root, model.QueryDescriptor{Pattern: "needle"})
	if summary.FileCount != 1 {
		t.Errorf("FileCount = %d, want 1", summary.FileCount)
	}
}

func TestSearchSubdirectoryScope(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/one.txt": "needle\n",
		"b/two.txt": "needle\n",
	})

	var rows []string
	_, err := New(root).Run(context.Background(), filepath.Join(root, "b"), model.QueryDescriptor{Pattern: "needle"}, func(row string) {
		rows = append(rows, row)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0] != "b/two.txt:1:needle" {
		t.Errorf("rows = %q, want the b/ match relative to root", rows)
	}
}

func TestReplaceAllRewritesFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.txt": "foo one\nbar\nfoo foo\n",
		"b.txt": "nothing here\n",
	})

	rows, summary := runSearch(t, root, model.QueryDescriptor{
		Pattern:     "foo",
		Replacement: "baz",
		ReplaceAll:  true,
	})
	if summary.Count != 2 || summary.FileCount != 1 {
		t.Errorf("summary = %+v, want 2 matches in 1 file", summary)
	}
	if rows[0] != "a.txt:1:baz one" || rows[1] != "a.txt:3:baz baz" {
		t.Errorf("rows = %q, want replaced text", rows)
	}

	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "baz one\nbar\nbaz baz\n" {
		t.Errorf("a.txt = %q", got)
	}
}

func TestReplaceRegexGroups(t *testing.T) {
	m, err := Compile(model.QueryDescriptor{
		Pattern:       `(\w+)@(\w+)`,
		IsRegex:       true,
		CaseSensitive: true,
		Replacement:   "$2 at $1",
		ReplaceAll:    true,
	})
	if err != nil {
		t.Fatal(err)
	}
	out, changed := m.Replace("mail bob@example now")
	if !changed || out != "mail example at bob now" {
		t.Errorf("Replace() = %q, %v", out, changed)
	}
}

func TestReplaceLiteralDollar(t *testing.T) {
	m, err := Compile(model.QueryDescriptor{Pattern: "price", Replacement: "$1", ReplaceAll: true})
	if err != nil {
		t.Fatal(err)
	}
	if out, _ := m.Replace("the price"); out != "the $1" {
		t.Errorf("Replace() = %q, want literal replacement", out)
	}
}

func TestMatcherRanges(t *testing.T) {
	m, err := Compile(model.QueryDescriptor{Pattern: "ab"})
	if err != nil {
		t.Fatal(err)
	}
	got := m.Ranges("xAbyabé ab")
	want := [][2]int{{1, 3}, {4, 6}, {8, 10}}
	if len(got) != len(want) {
		t.Fatalf("Ranges() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ranges()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := Compile(model.QueryDescriptor{}); !errors.Is(err, ErrEmptyPattern) {
		t.Errorf("empty pattern: err = %v", err)
	}
	if _, err := Compile(model.QueryDescriptor{Pattern: "(", IsRegex: true}); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("bad regexp: err = %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "needle\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(root).Run(ctx, root, model.QueryDescriptor{Pattern: "needle"}, func(string) {})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
