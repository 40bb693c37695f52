package model

import "time"

// QueryDescriptor describes a single search-in-files request.
type QueryDescriptor struct {
	Pattern       string
	IsRegex       bool
	CaseSensitive bool
	WholeWord     bool
	Replacement   string // only set when ReplaceAll is true
	ReplaceAll    bool
	ScopePath     string
	FilePatterns  string // comma separated include globs, e.g. "*.go, *.js"
}

// JobHandle identifies a search job running on the backend.
type JobHandle string

// PollResult is one increment of job output.
type PollResult struct {
	Data    string `json:"data"`
	Offset  int    `json:"offset"` // byte offset of Data in the job output
	Next    int    `json:"next"`
	Pending bool   `json:"pending"`
}

// Summary is the match/file count terminating a job's output.
type Summary struct {
	Count     int `json:"count"`
	FileCount int `json:"filecount"`
}

const (
	HistorySearch  = "searchfiles"
	HistoryReplace = "replacefiles"
)

type HistoryEntry struct {
	ID        int64
	Kind      string
	Query     string
	CreatedAt time.Time
}
