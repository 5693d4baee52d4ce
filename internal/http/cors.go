package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cliptray/cliptray/internal/config"
	"github.com/cliptray/cliptray/pkg/protocol"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, Idempotency-Key"
)

// originPolicy decides which browser origins may call the server.
type originPolicy struct {
	allowed         map[string]bool
	allowExtensions bool
}

func newOriginPolicy(cfg config.ServerConfig) *originPolicy {
	p := &originPolicy{
		allowed:         make(map[string]bool, len(cfg.AllowedOrigins)),
		allowExtensions: cfg.AllowExtensionOrigins,
	}
	for _, o := range config.NormalizeOrigins(cfg.AllowedOrigins) {
		p.allowed[o] = true
	}
	return p
}

// Allows reports whether origin may call the server. Requests without an
// Origin header come from native callers and always pass.
func (p *originPolicy) Allows(origin string) bool {
	if origin == "" {
		return true
	}
	if p.allowed[config.NormalizeOrigin(origin)] {
		return true
	}
	return p.allowExtensions && config.IsExtensionOrigin(origin)
}

// cors rejects disallowed origins, answers preflight requests and stamps the
// allow headers on everything else.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !s.policy.Load().Allows(origin) {
			slog.Warn("security.origin_rejected", "origin", origin, "path", r.URL.Path)
			writeJSON(w, http.StatusForbidden, protocol.NewErrorResponse(protocol.ErrForbidden, "origin not allowed"))
			return
		}

		if origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", strings.TrimRight(origin, "/"))
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", "600")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
