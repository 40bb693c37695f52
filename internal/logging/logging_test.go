package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Debug("hidden")
	New(&buf, false).Info("shown", "job", "j1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown job=j1")

	buf.Reset()
	New(&buf, true).Debug("poll", "offset", 12)
	assert.Contains(t, buf.String(), "level=DEBUG msg=poll offset=12")
}

func TestOpenFileAppends(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "c9search.log")

	for _, msg := range []string{"first", "second"} {
		log, closeFn, err := OpenFile(p, false)
		require.NoError(t, err)
		log.Info(msg)
		require.NoError(t, closeFn())
	}

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=first")
	assert.Contains(t, string(data), "msg=second")
}
