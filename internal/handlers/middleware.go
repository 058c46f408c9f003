package handlers

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/metrics"
)

type MiddlewareProvider struct {
	limiter *rate.Limiter
	logger  primary.Logger
}

func New(rps, burst int, logger primary.Logger) *MiddlewareProvider {
	if rps < 1 {
		rps = 1
	}
	if burst < rps {
		burst = rps
	}
	return &MiddlewareProvider{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// RateLimitMiddleware rejects requests over the configured rate with 429.
// The bucket is shared across all clients; sandboxed executions are
// expensive enough that one global ceiling is the point.
func (m *MiddlewareProvider) RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow() {
			metrics.RateLimitHits.Inc()
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs one line per request with method, path, status
// and duration
func (m *MiddlewareProvider) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.logger.Info("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// statusRecorder captures the status code written by the handler chain
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
