package model

import "testing"

func TestParseResultLine(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		want   ResultLine
		wantOK bool
	}{
		{
			name:   "simple row",
			row:    "a.txt:1:foo bar",
			want:   ResultLine{Path: "a.txt", Line: 1, Text: "foo bar"},
			wantOK: true,
		},
		{
			name:   "text containing colons",
			row:    "src/main.go:42:\tfmt.Println(\"a:b:c\")",
			want:   ResultLine{Path: "src/main.go", Line: 42, Text: "\tfmt.Println(\"a:b:c\")"},
			wantOK: true,
		},
		{
			name:   "windows drive path",
			row:    `C:\proj\a.txt:7:x`,
			want:   ResultLine{Path: `C:\proj\a.txt`, Line: 7, Text: "x"},
			wantOK: true,
		},
		{
			name:   "empty text",
			row:    "b.txt:5:",
			want:   ResultLine{Path: "b.txt", Line: 5, Text: ""},
			wantOK: true,
		},
		{name: "blank row", row: ""},
		{name: "footer", row: "Found 2 matches in 2 files"},
		{name: "header", row: "Searching for 'x:1:y' in /workspace"},
		{name: "no line number", row: "a.txt:foo"},
		{name: "zero line", row: "a.txt:0:foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseResultLine(tt.row)
			if ok != tt.wantOK {
				t.Fatalf("ParseResultLine(%q) ok = %v, want %v", tt.row, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseResultLine(%q) = %+v, want %+v", tt.row, got, tt.want)
			}
		})
	}
}

func TestResultLineString(t *testing.T) {
	r := ResultLine{Path: "a.txt", Line: 3, Text: "hello"}
	if got := r.String(); got != "a.txt:3:hello" {
		t.Errorf("String() = %q", got)
	}
}

func TestResultLineProjectPath(t *testing.T) {
	tests := []struct {
		project string
		path    string
		want    string
	}{
		{"/workspace", "src/a.go", "/workspace/src/a.go"},
		{"/workspace/", "a.go", "/workspace/a.go"},
		{"/workspace", "/abs/a.go", "/abs/a.go"},
	}
	for _, tt := range tests {
		got := ResultLine{Path: tt.path}.ProjectPath(tt.project)
		if got != tt.want {
			t.Errorf("ProjectPath(%q) with %q = %q, want %q", tt.project, tt.path, got, tt.want)
		}
	}
}
