package model

import "time"

// ArchiveMeta describes a finished results document kept on disk.
type ArchiveMeta struct {
	Job         JobHandle `json:"job"`
	Query       string    `json:"query"`
	Replacement string    `json:"replacement,omitempty"`
	Scope       string    `json:"scope"`
	Count       int       `json:"count"`
	FileCount   int       `json:"filecount"`
	State       string    `json:"state"`
	StartedAt   time.Time `json:"started_at"`
	StoredAt    time.Time `json:"stored_at"`
}

// ArchiveEntry is an ArchiveMeta plus what the directory scan computed.
type ArchiveEntry struct {
	ArchiveMeta
	Key          string
	LastAccessed time.Time
	Size         int64
	Path         string
}
