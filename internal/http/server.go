package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"rutapro/internal/backend"
	"rutapro/internal/cache"
	"rutapro/internal/log"
	"rutapro/internal/middleware/ratelimit"
	"rutapro/internal/middleware/security"
	"rutapro/internal/middleware/trace"
	"rutapro/internal/stats"

	"log/slog"
)

// Server is the JSON API over a day store. Every route runs behind
// trace logging, security headers, suspicious request detection and,
// for mutating methods, rate limiting.
type Server struct {
	http.Server
	store backend.Backend

	limiter  *ratelimit.Limiter
	detector *security.Detector
	headers  *security.HeadersMiddleware
	tracer   *trace.Middleware

	// Cached range summaries; any write clears the whole cache since a
	// single day can shift every range containing it.
	statsCache *cache.LRUCache[stats.Summary]
	cacheMgr   *cache.Manager

	now func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store backend.Backend) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		store:      store,
		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:   security.NewDetector(),
		headers:    security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		statsCache: cache.NewLRUCache[stats.Summary](100, 30*time.Second),
		cacheMgr:   cache.NewManager(),
		now:        time.Now,
	}

	s.cacheMgr.Register(s.statsCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/days", s.guarded(s.handleDays))
	mux.HandleFunc("/days/active", s.guarded(s.handleActiveDay))
	mux.HandleFunc("/days/end", s.guarded(s.handleEndDay))
	mux.HandleFunc("/days/pause", s.guarded(s.handlePause))
	mux.HandleFunc("/incomes", s.guarded(s.handleCreateIncome))
	mux.HandleFunc("/expenses", s.guarded(s.handleCreateExpense))
	mux.HandleFunc("/stats", s.guarded(s.handleStats))
	mux.HandleFunc("/config", s.guarded(s.handleConfig))

	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)
	logware := log.Middleware(log.New(log.ComponentHTTP, nil))
	s.Handler = s.tracer.Middleware(s.headers.Middleware(logware(mux)))

	return s
}

// guarded applies suspicious request detection and per-IP rate limiting
// for mutating methods.
func (s *Server) guarded(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := s.detector.ExtractClientIP(r)

		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request blocked",
				"client_ip", clientIP,
				"method", r.Method,
				"path", r.URL.Path)
			writeError(w, http.StatusForbidden, "request rejected")
			return
		}

		if isMutating(r.Method) && !s.limiter.Allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		next(w, r)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func (s *Server) invalidateStats() {
	s.statsCache.Clear()
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
