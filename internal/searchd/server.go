// Package searchd is a small search backend speaking the codesearch job
// protocol: submit a query, poll its growing output by byte offset, cancel
// it, and read the files the results point at.
package searchd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/duydb2/cloud9/internal/search"
)

const (
	DefaultRetention = 10 * time.Minute
	DefaultMaxChunk  = 64 << 10
	submitBurst      = 5
)

var errOutsideProject = errors.New("path is outside the project")

type Options struct {
	// Root is the directory being served.
	Root string
	// Prefix is the client visible path of Root, e.g. "/workspace".
	Prefix string
	// Token, when set, must be presented as "token <t>" or "Bearer <t>".
	Token string
	// Retention is how long a finished job stays pollable.
	Retention time.Duration
	// MaxChunk caps the bytes returned by a single poll.
	MaxChunk int
	// SubmitRate limits new jobs per second. Zero is unlimited.
	SubmitRate float64
	Logger     *slog.Logger
}

type Server struct {
	opts    Options
	engine  *search.Engine
	log     *slog.Logger
	limiter *rate.Limiter
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	jobs map[string]*job
}

func New(opts Options) (*Server, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	opts.Root = root
	opts.Prefix = strings.TrimSuffix(path.Clean("/"+opts.Prefix), "/")
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.MaxChunk <= 0 {
		opts.MaxChunk = DefaultMaxChunk
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	limit := rate.Inf
	if opts.SubmitRate > 0 {
		limit = rate.Limit(opts.SubmitRate)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:    opts,
		engine:  search.New(root),
		log:     opts.Logger,
		limiter: rate.NewLimiter(limit, submitBurst),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]*job),
	}

	s.wg.Add(1)
	go s.reapLoop()
	return s, nil
}

// Handler returns the HTTP API of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/codesearch", s.handleSubmit)
	mux.HandleFunc("GET /api/codesearch/{id}", s.handlePoll)
	mux.HandleFunc("DELETE /api/codesearch/{id}", s.handleCancel)
	mux.HandleFunc("GET /api/fs/{path...}", s.handleFile)
	return s.logRequests(s.authorize(mux))
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("search backend listening", "addr", addr, "root", s.opts.Root, "prefix", s.opts.Prefix)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close cancels every running job and waits for them to stop.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

// Jobs returns the number of jobs currently held.
func (s *Server) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// resolve maps a client path to a location below Root.
func (s *Server) resolve(p string) (string, error) {
	clean := path.Clean("/" + p)
	rel := clean
	if s.opts.Prefix != "" {
		switch {
		case clean == s.opts.Prefix:
			rel = "/"
		case strings.HasPrefix(clean, s.opts.Prefix+"/"):
			rel = strings.TrimPrefix(clean, s.opts.Prefix)
		default:
			return "", errOutsideProject
		}
	}
	return filepath.Join(s.opts.Root, filepath.FromSlash(rel)), nil
}

func (s *Server) reapLoop() {
	defer s.wg.Done()

	interval := s.opts.Retention / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.reap()
		}
	}
}

func (s *Server) reap() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, j := range s.jobs {
		if j.expired(now, s.opts.Retention) {
			delete(s.jobs, id)
			n++
		}
	}
	if n > 0 {
		s.log.Debug("reaped finished jobs", "count", n)
	}
	return n
}
