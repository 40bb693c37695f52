package searchd

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/duydb2/cloud9/internal/query"
	"github.com/duydb2/cloud9/internal/search"
	"github.com/duydb2/cloud9/internal/stream"
)

type submitRequest struct {
	Path      string            `json:"path"`
	Operation string            `json:"operation"`
	Options   map[string]string `json:"options"`
}

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many searches, retry shortly")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Operation != query.Operation {
		writeError(w, http.StatusBadRequest, "unsupported operation "+strconv.Quote(req.Operation))
		return
	}

	d := query.Parse(req.Path, req.Options)
	if _, err := search.Compile(d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir, err := s.resolve(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := os.Stat(dir); err != nil {
		writeError(w, http.StatusNotFound, "scope not found: "+req.Path)
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	j := &job{id: uuid.NewString(), query: d, cancel: cancel}

	s.mu.Lock()
	s.jobs[j.id] = j
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx, j, dir)

	s.log.Info("search started", "job", j.id, "scope", req.Path, "replace", d.ReplaceAll)
	writeJSON(w, http.StatusAccepted, map[string]string{"job": j.id})
}

func (s *Server) run(ctx context.Context, j *job, dir string) {
	defer s.wg.Done()
	defer j.cancel()

	start := s.now()
	summary, err := s.engine.Run(ctx, dir, j.query, func(row string) {
		j.write(row + "\n")
	})
	if ctx.Err() != nil {
		j.finish(s.now())
		s.log.Info("search cancelled", "job", j.id)
		return
	}
	if err != nil {
		s.log.Warn("search stopped early", "job", j.id, "error", err)
	}

	line, _ := json.Marshal(summary)
	j.write(stream.SummaryMarker + " " + string(line) + "\n")
	j.finish(s.now())
	s.log.Info("search finished", "job", j.id, "count", summary.Count, "files", summary.FileCount,
		"elapsed", time.Since(start).Round(time.Millisecond))
}

func (s *Server) lookup(id string) *job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	j := s.lookup(r.PathValue("id"))
	if j == nil {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset "+strconv.Quote(v))
			return
		}
		offset = n
	}
	writeJSON(w, http.StatusOK, j.read(offset, s.opts.MaxChunk))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	j := s.jobs[id]
	delete(s.jobs, id)
	s.mu.Unlock()

	if j == nil {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	j.cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	p, err := s.resolve(r.PathValue("path"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusBadRequest, "not a file")
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) authorize(next http.Handler) http.Handler {
	if s.opts.Token == "" {
		return next
	}
	want := []byte(s.opts.Token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		got := strings.TrimPrefix(strings.TrimPrefix(auth, "token "), "Bearer ")
		if auth == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status,
			"elapsed", time.Since(start))
	})
}
