// Package trace assigns every request an ID and writes the start and
// completion log lines for it. The ID lives in the request context so
// deeper layers can correlate their own log output.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

type ctxKey struct{}

// Middleware is the request tracing middleware. It keeps a running
// request count for the readiness log line.
type Middleware struct {
	clientIP func(*http.Request) string
	requests atomic.Int64
}

// NewMiddleware wires the tracer with the client IP resolver, usually
// security.Detector.ExtractClientIP so forwarded headers are honored.
func NewMiddleware(clientIP func(*http.Request) string) *Middleware {
	return &Middleware{clientIP: clientIP}
}

// Middleware wraps next with request ID assignment and paired
// started/completed log lines. Completion level follows the status
// code: 2xx/3xx info, 4xx warn, 5xx error.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		id := newRequestID()

		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		r = r.WithContext(ctx)

		ip := ""
		if m.clientIP != nil {
			ip = m.clientIP(r)
		}

		slog.InfoContext(ctx, "HTTP request started",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"client_ip", ip,
			"user_agent", r.Header.Get("User-Agent"))

		m.requests.Add(1)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		switch {
		case rec.status >= 500:
			level = slog.LevelError
		case rec.status >= 400:
			level = slog.LevelWarn
		}

		slog.Log(ctx, level, "HTTP request completed",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rec.status,
			"duration_ms", time.Since(began).Milliseconds(),
			"client_ip", ip)
	})
}

// Requests returns the number of requests traced since startup.
func (m *Middleware) Requests() int64 {
	return m.requests.Load()
}

// RequestID returns the request's trace ID, or "" outside a traced request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func newRequestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b[:])
}
