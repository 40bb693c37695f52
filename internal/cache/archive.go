package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/duydb2/cloud9/internal/model"
)

const (
	resultsFile = "results.c9search"
	metaFile    = "meta.json"
	keyPrefix   = "q-"
)

var ErrNotFound = errors.New("archived result not found")

// Archive keeps finished results documents on disk, one directory per
// distinct query. Re-running a query replaces its previous document.
type Archive struct {
	dir     string
	maxSize int64         // max total size in bytes, zero for no cap
	ttl     time.Duration // entry TTL since last access, zero for none
}

func NewArchive(dir string, maxSizeMB int, ttl time.Duration) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Archive{
		dir:     dir,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		ttl:     ttl,
	}, nil
}

func (a *Archive) Dir() string {
	return a.dir
}

// Key fingerprints everything that determines a query's results.
func Key(d model.QueryDescriptor) (string, error) {
	h, err := hashstructure.Hash(d, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("hash query: %w", err)
	}
	return fmt.Sprintf("%s%016x", keyPrefix, h), nil
}

func (a *Archive) entryDir(key string) (string, error) {
	if !strings.HasPrefix(key, keyPrefix) || strings.ContainsAny(key, `/\.`) {
		return "", fmt.Errorf("%w: bad key %q", ErrNotFound, key)
	}
	return filepath.Join(a.dir, key), nil
}

// Store writes the document and metadata of a finished search and returns
// its key.
func (a *Archive) Store(d model.QueryDescriptor, meta model.ArchiveMeta, doc string) (string, error) {
	key, err := Key(d)
	if err != nil {
		return "", err
	}
	dir, _ := a.entryDir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive entry: %w", err)
	}

	if meta.StoredAt.IsZero() {
		meta.StoredAt = time.Now()
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), data, 0o644); err != nil {
		return "", fmt.Errorf("write archive meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, resultsFile), []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("write archive results: %w", err)
	}
	return key, nil
}

// Read returns an archived document and marks the entry as accessed.
func (a *Archive) Read(key string) (string, error) {
	dir, err := a.entryDir(key)
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, resultsFile)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", err
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return string(data), nil
}

// ReadMeta reads meta.json from an entry.
func (a *Archive) ReadMeta(key string) (*model.ArchiveMeta, error) {
	dir, err := a.entryDir(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, err
	}
	var meta model.ArchiveMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ListEntries scans the archive, most recently accessed first.
func (a *Archive) ListEntries() ([]model.ArchiveEntry, error) {
	dirEntries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var result []model.ArchiveEntry
	for _, e := range dirEntries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), keyPrefix) {
			continue
		}
		dirPath := filepath.Join(a.dir, e.Name())
		entry := model.ArchiveEntry{Key: e.Name(), Path: dirPath}
		if meta, err := a.ReadMeta(e.Name()); err == nil {
			entry.ArchiveMeta = *meta
		}
		entry.Size = dirSize(dirPath)
		entry.LastAccessed = dirLastAccessed(dirPath)
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastAccessed.After(result[j].LastAccessed)
	})
	return result, nil
}

// Evict removes expired entries, then the least recently accessed ones
// until the archive fits its size cap. It returns the number removed.
func (a *Archive) Evict() (int, error) {
	entries, err := a.ListEntries()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}

	removed := 0
	now := time.Now()
	remaining := entries[:0]
	for _, e := range entries {
		if a.ttl > 0 && now.Sub(e.LastAccessed) > a.ttl {
			if err := os.RemoveAll(e.Path); err != nil {
				return removed, err
			}
			total -= e.Size
			removed++
		} else {
			remaining = append(remaining, e)
		}
	}

	if a.maxSize > 0 && total > a.maxSize {
		// ListEntries sorts newest first; evict from the back.
		for i := len(remaining) - 1; i >= 0 && total > a.maxSize; i-- {
			if err := os.RemoveAll(remaining[i].Path); err != nil {
				return removed, err
			}
			total -= remaining[i].Size
			removed++
		}
	}
	return removed, nil
}

// DeleteEntry removes a single entry.
func (a *Archive) DeleteEntry(key string) error {
	dir, err := a.entryDir(key)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// DeleteAll removes all entries.
func (a *Archive) DeleteAll() error {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), keyPrefix) {
			if err := os.RemoveAll(filepath.Join(a.dir, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// TotalSize returns total archive size in bytes.
func (a *Archive) TotalSize() (int64, error) {
	var total int64
	err := filepath.Walk(a.dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	return total, nil
}

func dirSize(path string) int64 {
	var size int64
	filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}

func dirLastAccessed(path string) time.Time {
	var latest time.Time
	filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	return latest
}
