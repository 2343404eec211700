// Package serve runs the preview server: it serves the rendered site over
// HTTP and rebuilds it when the content or theme directories change.
package serve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// buildStatus tracks the current build state for the health endpoint.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	hasGoodBuild bool
	lastBuild    time.Time
}

func (bs *buildStatus) setError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
	bs.lastBuild = time.Now()
}

func (bs *buildStatus) setSuccess() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = nil
	bs.hasGoodBuild = true
	bs.lastBuild = time.Now()
}

func (bs *buildStatus) snapshot() (err error, hasGoodBuild bool, lastBuild time.Time) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastError, bs.hasGoodBuild, bs.lastBuild
}

// Options configures the preview server.
type Options struct {
	Config    *config.Config
	Logger    *slog.Logger
	Generator *site.Generator
	Port      int
	Watch     bool
	Registry  *prom.Registry // non-nil enables /metrics
}

// Server serves the output directory and rebuilds on source changes.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	gen    *site.Generator
	port   int
	watch  bool
	reg    *prom.Registry
	status buildStatus
}

// New constructs a preview server.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:   opts.Config,
		log:   log,
		gen:   opts.Generator,
		port:  opts.Port,
		watch: opts.Watch,
		reg:   opts.Registry,
	}
}

// Run builds once, starts serving, and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx)

	httpServer, err := s.startHTTP(ctx)
	if err != nil {
		return err
	}

	rebuildReq := make(chan struct{}, 1)
	var watcher *fsnotify.Watcher
	if s.watch {
		watcher, err = s.setupWatcher()
		if err != nil {
			s.shutdownHTTP(httpServer)
			return err
		}
		defer func() { _ = watcher.Close() }()
		s.startRebuildWorker(ctx, rebuildReq)
	}

	trigger := newDebouncer(300*time.Millisecond, rebuildReq)

	for {
		if watcher == nil {
			<-ctx.Done()
			return s.shutdown(httpServer, rebuildReq)
		}
		select {
		case <-ctx.Done():
			return s.shutdown(httpServer, rebuildReq)
		case ev, ok := <-watcher.Events:
			if !ok {
				return s.shutdown(httpServer, rebuildReq)
			}
			s.handleFileEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return s.shutdown(httpServer, rebuildReq)
			}
			s.log.Warn("Watcher error", "error", err)
		}
	}
}

func (s *Server) startHTTP(ctx context.Context) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.gen.OutputDir())))
	mux.HandleFunc("/healthz", s.handleHealthz)
	if s.reg != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.reg))
	}

	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server failed", "error", err)
		}
	}()
	s.log.Info("Preview server listening", "url", fmt.Sprintf("http://localhost:%d", s.port))
	return srv, nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	err, good, last := s.status.snapshot()
	resp := map[string]any{
		"status":     "ok",
		"good_build": good,
	}
	if !last.IsZero() {
		resp["last_build"] = last.Format(time.RFC3339)
	}
	code := http.StatusOK
	if err != nil {
		resp["status"] = "build_error"
		resp["error"] = err.Error()
		if !good {
			code = http.StatusServiceUnavailable
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// setupWatcher watches the content and theme directories recursively.
func (s *Server) setupWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := s.addDirsRecursive(watcher, s.cfg.Content.Dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	if themeDir := s.cfg.ThemePath(); themeDir != "" {
		if _, err := os.Stat(themeDir); err == nil {
			if err := s.addDirsRecursive(watcher, themeDir); err != nil {
				_ = watcher.Close()
				return nil, err
			}
		}
	}
	return watcher, nil
}

// newDebouncer collapses bursts of events into single rebuild requests.
func newDebouncer(delay time.Duration, rebuildReq chan struct{}) func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
}

// startRebuildWorker serializes rebuilds; a request arriving mid-build is
// remembered and executed once the current build finishes.
func (s *Server) startRebuildWorker(ctx context.Context, rebuildReq chan struct{}) {
	var mu sync.Mutex
	running := false
	pending := false

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-rebuildReq:
				if !ok {
					return
				}
				mu.Lock()
				if running {
					pending = true
					mu.Unlock()
					continue
				}
				running = true
				mu.Unlock()

				s.log.Info("Change detected, rebuilding site")
				s.rebuild(ctx)

				mu.Lock()
				running = false
				if pending {
					pending = false
					mu.Unlock()
					select {
					case rebuildReq <- struct{}{}:
					default:
					}
				} else {
					mu.Unlock()
				}
			}
		}
	}()
}

func (s *Server) rebuild(ctx context.Context) {
	if _, err := s.gen.Build(ctx); err != nil {
		s.log.Warn("Build failed", "error", err)
		s.status.setError(err)
		return
	}
	s.status.setSuccess()
}

func (s *Server) handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = s.addDirsRecursive(watcher, ev.Name)
		}
	}
	s.log.Debug("File change detected", "path", ev.Name, "op", ev.Op.String())
	trigger()
}

func (s *Server) shutdown(srv *http.Server, rebuildReq chan struct{}) error {
	s.log.Info("Shutting down preview server")
	err := s.shutdownHTTP(srv)
	close(rebuildReq)
	return err
}

func (s *Server) shutdownHTTP(srv *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("HTTP server shutdown error", "error", err)
		return err
	}
	return nil
}
