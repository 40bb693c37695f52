package ops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/duydb2/cloud9/internal/model"
)

type PruneFilter struct {
	Query     string // case-insensitive substring of the query
	Scope     string // scope path prefix
	State     string
	OlderThan time.Duration
}

func FilterEntries(entries []model.ArchiveEntry, filter PruneFilter) []model.ArchiveEntry {
	var matched []model.ArchiveEntry
	now := time.Now()

	for _, e := range entries {
		if filter.Query != "" && !strings.Contains(strings.ToLower(e.Query), strings.ToLower(filter.Query)) {
			continue
		}
		if filter.Scope != "" && !strings.HasPrefix(e.Scope, filter.Scope) {
			continue
		}
		if filter.State != "" && !strings.EqualFold(e.State, filter.State) {
			continue
		}
		stored := e.StoredAt
		if stored.IsZero() {
			stored = e.LastAccessed
		}
		if filter.OlderThan > 0 && now.Sub(stored) < filter.OlderThan {
			continue
		}
		matched = append(matched, e)
	}
	return matched
}

type Deleter interface {
	DeleteEntry(key string) error
}

type PruneResult struct {
	Completed int
	Failed    int
	Errors    []error
}

func Prune(ctx context.Context, d Deleter, keys []string, onProgress func(completed, total int)) (*PruneResult, error) {
	result := &PruneResult{}
	total := len(keys)

	for i, key := range keys {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := d.DeleteEntry(key); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("entry %s: %w", key, err))
		} else {
			result.Completed++
		}

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	return result, nil
}

// Keys returns the archive keys of entries.
func Keys(entries []model.ArchiveEntry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}
