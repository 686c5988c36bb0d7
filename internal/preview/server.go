// Package preview serves the generated API reference page over HTTP and
// exposes the filter engine at /api/search. The served page is one guarded
// snapshot, replaced synchronously after every rebuild.
package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/protodoc/protodoc/internal/logfields"
	"github.com/protodoc/protodoc/internal/metrics"
	"github.com/protodoc/protodoc/internal/navtree"
	"github.com/protodoc/protodoc/internal/search"
)

// Server hosts the preview page and the search API.
type Server struct {
	addr     string
	recorder metrics.Recorder
	handler  http.Handler

	mu     sync.RWMutex
	page   []byte
	engine *search.Engine

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithMetricsHandler exposes the given handler at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.handler = h }
}

// NewServer creates a preview server listening on addr.
func NewServer(addr string, opts ...Option) *Server {
	s := &Server{addr: addr, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPage swaps in a freshly generated page. The navigation index and the
// filter engine are rebuilt from the page itself, so the search API always
// answers against exactly what is being served.
func (s *Server) SetPage(page []byte) error {
	idx, err := navtree.Build(bytes.NewReader(page))
	if err != nil {
		return fmt.Errorf("failed to index page: %w", err)
	}
	engine := search.New(idx)

	s.mu.Lock()
	s.page = page
	s.engine = engine
	s.mu.Unlock()

	slog.Debug("Preview page updated", logfields.Matches(idx.Len()))
	return nil
}

// Start runs the HTTP server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", logfields.URL("http://"+s.addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("preview server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	page := s.page
	s.mu.RUnlock()

	if page == nil {
		http.Error(w, "no page generated yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()

	if engine == nil {
		http.Error(w, "no page generated yet", http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query().Get("q")
	result := engine.Query(query)
	s.recorder.IncSearchRequest()
	slog.Debug("Search request", logfields.Query(query), logfields.Matches(result.Matches))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Failed to encode search result", logfields.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.page != nil
	s.mu.RUnlock()

	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no page"))
		return
	}
	_, _ = w.Write([]byte("ok"))
}

// Handler builds the route mux. Exposed so tests can exercise the routes
// without binding a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.handler != nil {
		mux.Handle("GET /metrics", s.handler)
	}
	return mux
}
