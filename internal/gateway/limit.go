package gateway

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/httpx"
	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/ratelimit"

	"github.com/rs/zerolog"
)

// Limiter caps each caller at limit requests per window.
type Limiter struct {
	store  ratelimit.Store
	limit  int
	window time.Duration
	logger *zerolog.Logger
}

func NewLimiter(store ratelimit.Store, limit int, window time.Duration, logger *zerolog.Logger) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, logger: logger}
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil || l.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := callerKey(r)
		allowed, err := l.store.Allow(r.Context(), key, l.limit, l.window)
		if err != nil {
			// fail open: a broken limiter must not take the gateway down
			l.logger.Error().Err(err).Str("key", key).Msg("rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			metrics.IncRateLimited("gateway")
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			httpx.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func callerKey(r *http.Request) string {
	if user := strings.TrimSpace(r.Header.Get(models.UserIDHeader)); user != "" {
		return "user:" + user
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "ip:" + host
	}
	return "ip:unknown"
}
