package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duydb2/cloud9/internal/model"
)

func openTestStore(t *testing.T, limit int) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"), limit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func queries(entries []model.HistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Query
	}
	return out
}

func TestAddAndList(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()

	for _, q := range []string{"foo", "bar", "baz"} {
		require.NoError(t, s.Add(ctx, model.HistorySearch, q))
	}
	require.NoError(t, s.Add(ctx, model.HistoryReplace, "qux"))

	entries, err := s.List(ctx, model.HistorySearch, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"baz", "bar", "foo"}, queries(entries))
	assert.Equal(t, model.HistorySearch, entries[0].Kind)
	assert.False(t, entries[0].CreatedAt.IsZero())

	entries, err = s.List(ctx, model.HistorySearch, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = s.List(ctx, model.HistoryReplace, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"qux"}, queries(entries))
}

func TestAddMovesDuplicateToTop(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()

	for _, q := range []string{"foo", "bar", "foo"} {
		require.NoError(t, s.Add(ctx, model.HistorySearch, q))
	}
	entries, err := s.List(ctx, model.HistorySearch, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, queries(entries))
}

func TestAddIgnoresEmpty(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, model.HistorySearch, ""))
	entries, err := s.List(ctx, model.HistorySearch, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLimitTrimsOldest(t *testing.T) {
	s := openTestStore(t, 3)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, s.Add(ctx, model.HistorySearch, q))
	}
	require.NoError(t, s.Add(ctx, model.HistoryReplace, "r"))

	entries, err := s.List(ctx, model.HistorySearch, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "d", "c"}, queries(entries))

	entries, err = s.List(ctx, model.HistoryReplace, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "limit applies per kind")
}

func TestClear(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, model.HistorySearch, "a"))
	require.NoError(t, s.Add(ctx, model.HistorySearch, "b"))
	require.NoError(t, s.Add(ctx, model.HistoryReplace, "c"))

	n, err := s.Clear(ctx, model.HistorySearch)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Clear(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, model.HistorySearch, "persisted"))
	require.NoError(t, s.Close())

	s, err = Open(path, 0)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.List(ctx, model.HistorySearch, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted"}, queries(entries))
}

func TestFilter(t *testing.T) {
	entries := []model.HistoryEntry{
		{Query: "handleSubmit"},
		{Query: "TODO"},
		{Query: "http.Handler"},
	}

	assert.Equal(t, entries, Filter(entries, ""))

	got := queries(Filter(entries, "hndl"))
	assert.ElementsMatch(t, []string{"handleSubmit", "http.Handler"}, got)
	assert.Empty(t, Filter(entries, "zzz"))
}
