package ops

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duydb2/cloud9/internal/model"
)

func TestFilterEntriesForPruning(t *testing.T) {
	now := time.Now()
	entries := []model.ArchiveEntry{
		{Key: "q-1", ArchiveMeta: model.ArchiveMeta{Query: "TODO", Scope: "/workspace", State: "completed", StoredAt: now.Add(-48 * time.Hour)}},
		{Key: "q-2", ArchiveMeta: model.ArchiveMeta{Query: "todo(", Scope: "/workspace/src", State: "cancelled", StoredAt: now.Add(-1 * time.Hour)}},
		{Key: "q-3", ArchiveMeta: model.ArchiveMeta{Query: "handler", Scope: "/other", State: "completed"}, LastAccessed: now.Add(-72 * time.Hour)},
	}

	tests := []struct {
		name   string
		filter PruneFilter
		want   int
	}{
		{
			name:   "by query",
			filter: PruneFilter{Query: "todo"},
			want:   2,
		},
		{
			name:   "by state",
			filter: PruneFilter{State: "completed"},
			want:   2,
		},
		{
			name:   "by age",
			filter: PruneFilter{OlderThan: 24 * time.Hour},
			want:   2,
		},
		{
			name:   "combined",
			filter: PruneFilter{Query: "todo", State: "completed"},
			want:   1,
		},
		{
			name:   "by scope",
			filter: PruneFilter{Scope: "/workspace"},
			want:   2,
		},
		{
			name:   "no match",
			filter: PruneFilter{Query: "nonexistent"},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterEntries(entries, tt.filter)
			if len(got) != tt.want {
				t.Errorf("FilterEntries() returned %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

type fakeDeleter struct {
	deleted []string
	fail    map[string]bool
}

func (f *fakeDeleter) DeleteEntry(key string) error {
	if f.fail[key] {
		return errors.New("permission denied")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func TestPrune(t *testing.T) {
	d := &fakeDeleter{fail: map[string]bool{"q-2": true}}
	var progress []int

	res, err := Prune(context.Background(), d, []string{"q-1", "q-2", "q-3"}, func(done, total int) {
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		progress = append(progress, done)
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Completed != 2 || res.Failed != 1 || len(res.Errors) != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(d.deleted) != 2 || d.deleted[0] != "q-1" || d.deleted[1] != "q-3" {
		t.Errorf("deleted = %v", d.deleted)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Errorf("progress = %v", progress)
	}
}

func TestPruneStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &fakeDeleter{}
	res, err := Prune(ctx, d, []string{"q-1"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res.Completed != 0 || len(d.deleted) != 0 {
		t.Errorf("nothing should be deleted, got %+v", res)
	}
}

func TestKeys(t *testing.T) {
	got := Keys([]model.ArchiveEntry{{Key: "q-a"}, {Key: "q-b"}})
	if len(got) != 2 || got[0] != "q-a" || got[1] != "q-b" {
		t.Errorf("Keys() = %v", got)
	}
}
