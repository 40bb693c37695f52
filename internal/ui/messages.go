package ui

import (
	"github.com/duydb2/cloud9/internal/model"
	"github.com/duydb2/cloud9/internal/ops"
	"github.com/duydb2/cloud9/internal/stream"
)

// Search lifecycle messages

// SubmittedMsg reports the backend's answer to a submit. Seq identifies
// the submit so an answer that arrives after a newer submit is dropped.
type SubmittedMsg struct {
	Seq    uint64
	Query  model.QueryDescriptor
	Handle model.JobHandle
	Err    error
}

type PollTickMsg struct {
	Task *stream.Task
}

// ChunkMsg carries the outcome of one poll of Task.
type ChunkMsg struct {
	Task   *stream.Task
	Result model.PollResult
	Err    error
}

type RemoteCancelledMsg struct {
	Job model.JobHandle
	Err error
}

type FileLoadedMsg struct {
	Path    string
	Line    int
	Content string
	Err     error
}

type HistoryLoadedMsg struct {
	Kind    string
	Entries []model.HistoryEntry
	Err     error
}

// Archive messages

type ArchiveLoadedMsg struct {
	Entries   []model.ArchiveEntry
	TotalSize int64
	Err       error
}

type ArchivedMsg struct {
	Key     string
	Evicted int
	Err     error
}

type ArchiveOpenedMsg struct {
	Entry model.ArchiveEntry
	Doc   string
	Err   error
}

type ArchiveDeletedMsg struct {
	Result *ops.PruneResult
	Err    error
}

type StatusMsg struct {
	Text string
}
