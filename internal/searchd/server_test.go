package searchd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duydb2/cloud9/internal/api"
	"github.com/duydb2/cloud9/internal/logging"
	"github.com/duydb2/cloud9/internal/model"
	"github.com/duydb2/cloud9/internal/stream"
)

type fixture struct {
	root   string
	server *Server
	client *api.Client
	url    string
}

func newFixture(t *testing.T, opts Options, files map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	opts.Root = root
	opts.Logger = logging.Discard()
	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	c, err := api.NewClient(api.Options{ServerURL: srv.URL, Token: opts.Token})
	require.NoError(t, err)
	return &fixture{root: root, server: s, client: c, url: srv.URL}
}

func (f *fixture) search(t *testing.T, d model.QueryDescriptor) []string {
	t.Helper()
	s := stream.NewSession(stream.Options{MaxPollFailures: 3})
	task, err := stream.Begin(context.Background(), f.client, s, d)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := stream.Run(ctx, f.client, s, task, time.Millisecond, nil)
	require.NoError(t, err)
	require.Equal(t, stream.StateCompleted, st.State)
	return s.Lines()
}

var projectFiles = map[string]string{
	"a.txt":        "foo bar\nnothing\n",
	"src/b.txt":    "one\ntwo\nthree\nfour\nfoo baz\n",
	"src/c.go":     "package c // foo\n",
	".git/config":  "foo\n",
	"docs/readme":  "no match here\n",
	"docs/ünï.txt": "fööfoo\n",
}

func TestSearchEndToEnd(t *testing.T) {
	f := newFixture(t, Options{Prefix: "/workspace"}, projectFiles)

	lines := f.search(t, model.QueryDescriptor{Pattern: "foo", ScopePath: "/workspace", CaseSensitive: true})
	assert.Equal(t, []string{
		"a.txt:1:foo bar",
		"docs/ünï.txt:1:fööfoo",
		"src/b.txt:5:foo baz",
		"src/c.go:1:package c // foo",
		"",
		"Found 4 matches in 4 files",
		"",
		"",
	}, lines)
}

func TestSearchSmallChunks(t *testing.T) {
	f := newFixture(t, Options{Prefix: "/workspace", MaxChunk: 5}, projectFiles)

	lines := f.search(t, model.QueryDescriptor{Pattern: "foo", ScopePath: "/workspace/docs", CaseSensitive: true})
	assert.Equal(t, []string{
		"docs/ünï.txt:1:fööfoo",
		"",
		"Found 1 matches in 1 files",
		"",
		"",
	}, lines)
}

func TestSearchNoMatches(t *testing.T) {
	f := newFixture(t, Options{}, projectFiles)

	lines := f.search(t, model.QueryDescriptor{Pattern: "absent", ScopePath: "/"})
	assert.Equal(t, []string{"", "Found 0 match in 0 file", "", ""}, lines)
}

func TestReplaceEndToEnd(t *testing.T) {
	f := newFixture(t, Options{}, map[string]string{"a.txt": "foo bar\nfoo\n"})

	lines := f.search(t, model.QueryDescriptor{
		Pattern: "foo", Replacement: "qux", ReplaceAll: true, ScopePath: "/",
	})
	assert.Equal(t, "a.txt:1:qux bar", lines[0])
	assert.Equal(t, "a.txt:2:qux", lines[1])

	data, err := f.client.ReadFile(context.Background(), "/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "qux bar\nqux\n", string(data))
}

func TestSubmitRejectsBadRequests(t *testing.T) {
	f := newFixture(t, Options{Prefix: "/workspace"}, projectFiles)
	ctx := context.Background()

	tests := []struct {
		name   string
		d      model.QueryDescriptor
		status int
	}{
		{"invalid regexp", model.QueryDescriptor{Pattern: "(", IsRegex: true, ScopePath: "/workspace"}, http.StatusBadRequest},
		{"empty pattern", model.QueryDescriptor{ScopePath: "/workspace"}, http.StatusBadRequest},
		{"outside project", model.QueryDescriptor{Pattern: "x", ScopePath: "/etc"}, http.StatusBadRequest},
		{"escaping project", model.QueryDescriptor{Pattern: "x", ScopePath: "/workspace/../etc"}, http.StatusBadRequest},
		{"missing scope", model.QueryDescriptor{Pattern: "x", ScopePath: "/workspace/nope"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := f.client.Submit(ctx, tt.d)
			require.Error(t, err)
			assert.Empty(t, h)
			var httpErr *ghAPI.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
		})
	}
	assert.Equal(t, 0, f.server.Jobs())
}

func TestCancelRemovesJob(t *testing.T) {
	f := newFixture(t, Options{}, projectFiles)
	ctx := context.Background()

	h, err := f.client.Submit(ctx, model.QueryDescriptor{Pattern: "foo", ScopePath: "/"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.server.Jobs())

	require.NoError(t, f.client.Cancel(ctx, h))
	assert.Equal(t, 0, f.server.Jobs())

	_, err = f.client.Poll(ctx, h, 0)
	assert.True(t, api.IsNotFound(err))

	// Cancelling twice is fine.
	require.NoError(t, f.client.Cancel(ctx, h))
}

func TestReapExpiredJobs(t *testing.T) {
	f := newFixture(t, Options{Retention: time.Minute}, projectFiles)
	f.search(t, model.QueryDescriptor{Pattern: "foo", ScopePath: "/"})
	require.Equal(t, 1, f.server.Jobs())

	assert.Equal(t, 0, f.server.reap(), "fresh job is kept")

	f.server.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, 1, f.server.reap())
	assert.Equal(t, 0, f.server.Jobs())
}

func TestTokenRequired(t *testing.T) {
	f := newFixture(t, Options{Token: "s3cret"}, projectFiles)
	f.search(t, model.QueryDescriptor{Pattern: "foo", ScopePath: "/"})

	anon, err := api.NewClient(api.Options{ServerURL: f.url})
	require.NoError(t, err)
	_, err = anon.Submit(context.Background(), model.QueryDescriptor{Pattern: "foo", ScopePath: "/"})
	var httpErr *ghAPI.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestSubmitRateLimit(t *testing.T) {
	f := newFixture(t, Options{SubmitRate: 0.001}, projectFiles)
	ctx := context.Background()

	for i := 0; i < submitBurst; i++ {
		_, err := f.client.Submit(ctx, model.QueryDescriptor{Pattern: "foo", ScopePath: "/"})
		require.NoError(t, err)
	}
	_, err := f.client.Submit(ctx, model.QueryDescriptor{Pattern: "foo", ScopePath: "/"})
	var httpErr *ghAPI.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
}

func TestReadFile(t *testing.T) {
	f := newFixture(t, Options{Prefix: "/workspace"}, projectFiles)
	ctx := context.Background()

	data, err := f.client.ReadFile(ctx, "/workspace/src/b.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "foo baz\n"))

	_, err = f.client.ReadFile(ctx, "/workspace/missing.txt")
	assert.True(t, api.IsNotFound(err))

	_, err = f.client.ReadFile(ctx, "/workspace/src")
	assert.Error(t, err)
}

func TestJobRead(t *testing.T) {
	j := &job{}
	j.write("ab\ncd\nef")

	res := j.read(0, 6)
	assert.Equal(t, model.PollResult{Data: "ab\ncd\n", Offset: 0, Next: 6, Pending: true}, res)

	// Cut after the last newline within the limit.
	res = j.read(0, 4)
	assert.Equal(t, "ab\n", res.Data)

	res = j.read(6, 0)
	assert.Equal(t, "ef", res.Data)
	assert.True(t, res.Pending)

	j.finish(time.Now())
	res = j.read(8, 0)
	assert.Equal(t, model.PollResult{Offset: 8, Next: 8, Pending: false}, res)

	res = j.read(100, 0)
	assert.Equal(t, 8, res.Offset)
}

func TestCutKeepsRunesWhole(t *testing.T) {
	out := "ééé"
	end := cut(out, 0, 3)
	assert.Equal(t, 2, end)
	assert.Equal(t, "é", out[:end])
}
