// Package config loads c9search settings from a YAML file. Every field has
// a default, so a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the config file location.
const EnvPath = "C9SEARCH_CONFIG"

var (
	ErrInvalidValue   = errors.New("invalid config value")
	ErrMissingProject = errors.New("server.project is required")
)

// Server is the remote search backend the client talks to.
type Server struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token,omitempty"`
	Project string        `yaml:"project"` // project root as the server names it
	Timeout time.Duration `yaml:"timeout"` // per HTTP request
}

type Poll struct {
	Interval    time.Duration `yaml:"interval"`
	Timeout     time.Duration `yaml:"timeout"` // whole search
	MaxFailures int           `yaml:"max_failures"`
}

// Search holds the initial state of the find form toggles.
type Search struct {
	Regex        bool   `yaml:"regex"`
	MatchCase    bool   `yaml:"match_case"`
	WholeWord    bool   `yaml:"whole_word"`
	FilePatterns string `yaml:"file_patterns,omitempty"`
	Header       bool   `yaml:"header"` // write a "Searching for" line before results
}

type History struct {
	DB    string `yaml:"db"`
	Limit int    `yaml:"limit"`
}

type Archive struct {
	Dir       string        `yaml:"dir"`
	MaxSizeMB int           `yaml:"max_size_mb"`
	TTL       time.Duration `yaml:"ttl"`
}

// Serve configures the bundled search backend.
type Serve struct {
	Listen     string        `yaml:"listen"`
	Root       string        `yaml:"root"`
	Prefix     string        `yaml:"prefix"`
	Token      string        `yaml:"token,omitempty"`
	Retention  time.Duration `yaml:"retention"`
	MaxChunkKB int           `yaml:"max_chunk_kb"`
	SubmitRate float64       `yaml:"submit_rate"` // submits per second, zero for unlimited
}

type Config struct {
	Server  Server  `yaml:"server"`
	Poll    Poll    `yaml:"poll"`
	Search  Search  `yaml:"search"`
	History History `yaml:"history"`
	Archive Archive `yaml:"archive"`
	Serve   Serve   `yaml:"serve"`
	Debug   bool    `yaml:"debug,omitempty"`
	LogFile string  `yaml:"log_file,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	state := stateDir()
	return &Config{
		Server: Server{
			URL:     "http://127.0.0.1:8181",
			Project: "/workspace",
			Timeout: 30 * time.Second,
		},
		Poll: Poll{
			Interval:    200 * time.Millisecond,
			Timeout:     5 * time.Minute,
			MaxFailures: 10,
		},
		Search: Search{Header: true},
		History: History{
			DB:    filepath.Join(state, "history.db"),
			Limit: 100,
		},
		Archive: Archive{
			Dir:       filepath.Join(state, "results"),
			MaxSizeMB: 200,
			TTL:       7 * 24 * time.Hour,
		},
		Serve: Serve{
			Listen:     "127.0.0.1:8181",
			Root:       ".",
			Prefix:     "/workspace",
			Retention:  10 * time.Minute,
			MaxChunkKB: 64,
		},
		LogFile: filepath.Join(state, "c9search.log"),
	}
}

// Path returns the config file location: $C9SEARCH_CONFIG, otherwise
// ~/.config/c9search/config.yaml.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".c9search", "config.yaml")
	}
	return filepath.Join(home, ".config", "c9search", "config.yaml")
}

func stateDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "c9search")
	}
	return filepath.Join(os.TempDir(), "c9search")
}

// Load reads path over the defaults. An empty path means Path(). A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal renders the effective configuration.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) Validate() error {
	if c.Server.Project == "" {
		return ErrMissingProject
	}
	if c.Poll.Interval < 10*time.Millisecond || c.Poll.Interval > 10*time.Second {
		return fmt.Errorf("%w: poll.interval must be between 10ms and 10s, got %s", ErrInvalidValue, c.Poll.Interval)
	}
	if c.Poll.Timeout < 0 {
		return fmt.Errorf("%w: poll.timeout must not be negative, got %s", ErrInvalidValue, c.Poll.Timeout)
	}
	if c.Poll.MaxFailures < 1 {
		return fmt.Errorf("%w: poll.max_failures must be at least 1, got %d", ErrInvalidValue, c.Poll.MaxFailures)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("%w: server.timeout must not be negative, got %s", ErrInvalidValue, c.Server.Timeout)
	}
	if c.History.Limit < 1 || c.History.Limit > 10000 {
		return fmt.Errorf("%w: history.limit must be between 1 and 10000, got %d", ErrInvalidValue, c.History.Limit)
	}
	if c.Archive.MaxSizeMB < 0 {
		return fmt.Errorf("%w: archive.max_size_mb must not be negative, got %d", ErrInvalidValue, c.Archive.MaxSizeMB)
	}
	if c.Archive.TTL < 0 {
		return fmt.Errorf("%w: archive.ttl must not be negative, got %s", ErrInvalidValue, c.Archive.TTL)
	}
	if c.Serve.MaxChunkKB < 1 || c.Serve.MaxChunkKB > 4096 {
		return fmt.Errorf("%w: serve.max_chunk_kb must be between 1 and 4096, got %d", ErrInvalidValue, c.Serve.MaxChunkKB)
	}
	if c.Serve.SubmitRate < 0 {
		return fmt.Errorf("%w: serve.submit_rate must not be negative, got %g", ErrInvalidValue, c.Serve.SubmitRate)
	}
	if c.Serve.Retention < time.Second {
		return fmt.Errorf("%w: serve.retention must be at least 1s, got %s", ErrInvalidValue, c.Serve.Retention)
	}
	return nil
}
