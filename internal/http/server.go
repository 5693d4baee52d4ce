// Package http serves the local ingestion endpoint used by the browser
// extension: POST /add-clip, screenshot files, a health check and a
// WebSocket stream of library events.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cliptray/cliptray/internal/bus"
	"github.com/cliptray/cliptray/internal/config"
	"github.com/cliptray/cliptray/internal/store"
	"github.com/cliptray/cliptray/pkg/protocol"
)

// Library is the subset of library.Library the server needs.
type Library interface {
	Ingest(ctx context.Context, raw map[string]any) (*store.Clip, bool, error)
	Counts() (clips, sections int)
}

// Screenshots resolves stored screenshot names to files.
type Screenshots interface {
	Path(name string) (string, error)
}

// Server is the ingestion HTTP server. Settings that may change at runtime
// (origins, rate limit, body size) are swapped atomically by ApplyConfig.
type Server struct {
	lib    Library
	shots  Screenshots
	bus    *bus.Bus
	dedupe *bus.DedupeCache

	inflight singleflight.Group // add-clip by idempotency key

	policy  atomic.Pointer[originPolicy]
	limiter atomic.Pointer[RateLimiter]
	maxBody atomic.Int64

	addr    string
	mu      sync.Mutex
	httpSrv *http.Server
}

// NewServer creates a server. shots and b may be nil, which disables the
// screenshot route and the event stream respectively.
func NewServer(lib Library, shots Screenshots, b *bus.Bus, cfg config.ServerConfig) *Server {
	s := &Server{
		lib:    lib,
		shots:  shots,
		bus:    b,
		dedupe: bus.NewDedupeCache(10*time.Minute, 1000),
		addr:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}
	s.ApplyConfig(cfg)
	return s
}

// ApplyConfig swaps in new origin, rate limit and body size settings. The
// listen address only changes on restart.
func (s *Server) ApplyConfig(cfg config.ServerConfig) {
	s.policy.Store(newOriginPolicy(cfg))
	s.limiter.Store(NewRateLimiter(cfg.RateLimitRPM, 0))
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	s.maxBody.Store(maxBody)

	slog.Debug("ingest server settings applied",
		"origins", len(cfg.AllowedOrigins),
		"extensions", cfg.AllowExtensionOrigins,
		"rate_limit_rpm", cfg.RateLimitRPM,
		"max_body", maxBody,
	)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Handler returns the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /add-clip", s.handleAddClip)
	mux.HandleFunc("GET /screenshots/{filename}", s.handleScreenshot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /events", s.handleEvents)

	return s.recoverer(s.cors(s.rateLimit(mux)))
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("ingest server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		slog.Info("ingest server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Load().Allow(clientKey(r)) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, protocol.NewErrorResponse(protocol.ErrRateLimited, "too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverer turns a handler panic into a 500 so that one bad request never
// takes the server down.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("http: handler panic", "method", r.Method, "path", r.URL.Path, "panic", rec)
				writeJSON(w, http.StatusInternalServerError, protocol.NewErrorResponse(protocol.ErrInternal, "internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("http: write response failed", "error", err)
	}
}
