// Package webserve exposes the scan pipeline over HTTP: a trigger
// endpoint with single-flight semantics, status and log readbacks,
// scan settings editing and the static dashboard.
package webserve

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/capcurve/capcurve/core"
	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
)

const (
	// scanTimeout bounds one triggered run. There is no cancellation
	// endpoint; a run completes or times out.
	scanTimeout = 300 * time.Second

	// logBufferCap bounds the captured per-run log. Older output is
	// dropped from the front when a run exceeds it.
	logBufferCap = 64 * 1024

	readHeaderTimeout = 10 * time.Second
)

// scanFunc matches core.Run and is swapped out in tests.
type scanFunc func(ctx context.Context, cfg *contract.Config, client contract.GitClient, store contract.HistoryStore) (*schema.Report, error)

// runState is the /api/log document for the most recent run.
type runState struct {
	RunID    string `json:"run_id"`
	Started  string `json:"started"`
	Finished string `json:"finished"`
	Success  bool   `json:"success"`
	Log      string `json:"log"`
}

// Server serves the dashboard and the scan API. One scan runs at a
// time; concurrent triggers are rejected.
type Server struct {
	cfg    *contract.Config
	client contract.GitClient
	store  contract.HistoryStore
	scan   scanFunc
	log    *slog.Logger

	mu      sync.Mutex
	running bool
	lastRun *runState
}

// New builds a server around a validated config.
func New(cfg *contract.Config, client contract.GitClient, store contract.HistoryStore) *Server {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return &Server{cfg: cfg, client: client, store: store, scan: core.Run, log: log}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/scan", s.handleScan)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/log", s.handleLog)
	mux.HandleFunc("GET /api/config", s.handleConfigGet)
	mux.HandleFunc("PUT /api/config", s.handleConfigPut)
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	return s.logRequests(noCache(mux))
}

// logRequests records each request with its status and latency.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond).String())
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// ListenAndServe runs the server until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Serving dashboard on http://%s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// noCache stamps every response; the dashboard always polls fresh.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleScan(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		writeJSONStatus(w, http.StatusConflict, map[string]string{"status": "already_running"})
		return
	}
	s.running = true
	run := &runState{
		RunID:   uuid.NewString(),
		Started: time.Now().Format(schema.TimestampFormat),
	}
	s.lastRun = run
	// The run works on its own copy of the config so a concurrent
	// settings update only affects the next run.
	cfg := s.snapshotConfig()
	s.mu.Unlock()

	go s.runScan(run, cfg)

	writeJSONStatus(w, http.StatusOK, map[string]string{"status": "started"})
}

// snapshotConfig copies the config for one run, cloning the fields the
// settings endpoint can rewrite. Callers must hold s.mu.
func (s *Server) snapshotConfig() *contract.Config {
	cfg := *s.cfg
	cfg.ScanDirs = slices.Clone(cfg.ScanDirs)
	cfg.SkipPatterns = slices.Clone(cfg.SkipPatterns)
	return &cfg
}

// runScan executes one scan on its own goroutine, collecting progress
// output for /api/log through the config's progress sink.
func (s *Server) runScan(run *runState, cfg *contract.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	buf := &tailBuffer{}
	cfg.Out = buf

	s.log.Info("scan started", "run_id", run.RunID)
	_, scanErr := s.scan(ctx, cfg, s.client, s.store)
	captured := buf.String()
	if scanErr != nil {
		captured += fmt.Sprintf("\nscan failed: %v\n", scanErr)
		s.log.Error("scan failed", "run_id", run.RunID, "error", scanErr)
	} else {
		s.log.Info("scan finished", "run_id", run.RunID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	run.Finished = time.Now().Format(schema.TimestampFormat)
	run.Success = scanErr == nil
	run.Log = captured
}

// tailBuffer keeps the last logBufferCap bytes written to it.
type tailBuffer struct {
	buf bytes.Buffer
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n, err := t.buf.Write(p)
	if t.buf.Len() > logBufferCap {
		trimmed := t.buf.Bytes()[t.buf.Len()-logBufferCap:]
		rest := make([]byte, len(trimmed))
		copy(rest, trimmed)
		t.buf.Reset()
		t.buf.Write(rest)
	}
	return n, err
}

func (t *tailBuffer) String() string { return t.buf.String() }

func (s *Server) handleLog(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	run := runState{}
	if s.lastRun != nil {
		run = *s.lastRun
	}
	s.mu.Unlock()
	writeJSONStatus(w, http.StatusOK, run)
}
