package model

import (
	"strconv"
	"strings"
)

// ResultLine is a single "path:line:text" row of a results document.
type ResultLine struct {
	Path string
	Line int
	Text string
}

// ParseResultLine parses a results row. Header, footer and blank rows
// return ok == false.
//
// Paths may themselves contain colons (Windows drives), so the path ends at
// the first colon that is followed by digits and another colon.
func ParseResultLine(row string) (ResultLine, bool) {
	if row == "" || strings.HasPrefix(row, "Searching for '") || strings.HasPrefix(row, "Found ") {
		return ResultLine{}, false
	}

	for i := 0; i < len(row); i++ {
		if row[i] != ':' || i == 0 {
			continue
		}
		j := i + 1
		for j < len(row) && row[j] >= '0' && row[j] <= '9' {
			j++
		}
		if j == i+1 || j >= len(row) || row[j] != ':' {
			continue
		}
		lineNo, err := strconv.Atoi(row[i+1 : j])
		if err != nil || lineNo < 1 {
			continue
		}
		return ResultLine{
			Path: row[:i],
			Line: lineNo,
			Text: row[j+1:],
		}, true
	}
	return ResultLine{}, false
}

// String renders the row the way the backend emits it.
func (r ResultLine) String() string {
	return r.Path + ":" + strconv.Itoa(r.Line) + ":" + r.Text
}

// ProjectPath returns the path of the row's file as the backend addresses
// it: rows are relative to the project root.
func (r ResultLine) ProjectPath(project string) string {
	if strings.HasPrefix(r.Path, "/") {
		return r.Path
	}
	return strings.TrimSuffix(project, "/") + "/" + r.Path
}
