package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
server:
  url: https://ide.example.com
  project: /home/ubuntu/app
poll:
  interval: 50ms
  timeout: 1m
search:
  regex: true
  file_patterns: "*.go"
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "https://ide.example.com", cfg.Server.URL)
	assert.Equal(t, "/home/ubuntu/app", cfg.Server.Project)
	assert.Equal(t, 50*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, time.Minute, cfg.Poll.Timeout)
	assert.True(t, cfg.Search.Regex)
	assert.Equal(t, "*.go", cfg.Search.FilePatterns)

	// untouched fields keep defaults
	assert.Equal(t, 10, cfg.Poll.MaxFailures)
	assert.Equal(t, 100, cfg.History.Limit)
}

func TestLoadEnvPath(t *testing.T) {
	p := writeConfig(t, "server:\n  project: /srv\n")
	t.Setenv(EnvPath, p)

	assert.Equal(t, p, Path())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv", cfg.Server.Project)
}

func TestLoadMalformed(t *testing.T) {
	p := writeConfig(t, "server: [unclosed\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed config file")
}

func TestLoadRejectsInvalid(t *testing.T) {
	p := writeConfig(t, "poll:\n  interval: 1ms\n")
	_, err := Load(p)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"no project", func(c *Config) { c.Server.Project = "" }, ErrMissingProject},
		{"interval too long", func(c *Config) { c.Poll.Interval = time.Minute }, ErrInvalidValue},
		{"zero failures", func(c *Config) { c.Poll.MaxFailures = 0 }, ErrInvalidValue},
		{"negative timeout", func(c *Config) { c.Poll.Timeout = -time.Second }, ErrInvalidValue},
		{"history limit", func(c *Config) { c.History.Limit = 0 }, ErrInvalidValue},
		{"archive size", func(c *Config) { c.Archive.MaxSizeMB = -1 }, ErrInvalidValue},
		{"chunk size", func(c *Config) { c.Serve.MaxChunkKB = 0 }, ErrInvalidValue},
		{"submit rate", func(c *Config) { c.Serve.SubmitRate = -1 }, ErrInvalidValue},
		{"retention", func(c *Config) { c.Serve.Retention = 0 }, ErrInvalidValue},
		{"zero poll timeout ok", func(c *Config) { c.Poll.Timeout = 0 }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "interval: 200ms")

	p := writeConfig(t, string(data))
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
