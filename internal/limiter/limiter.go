// Package limiter provides optional per-client rate limiting for the greeting
// route, backed by a Redis sliding window.
package limiter

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Decisions taken by the limiter, by outcome: "allowed", "blocked" or
// "failopen" when Redis could not be reached.
var decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scrite_ratelimit_decisions_total",
	Help: "Rate limiter decisions on the greeting route",
}, []string{"decision"})

// Prefix for the per-client sorted sets.
const keyPrefix = "scrite:limit:"

// A RateLimiter admits at most limit requests per key within a sliding window.
type RateLimiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
	seq    atomic.Uint64
}

// New returns a RateLimiter using rdb for its state.
func New(rdb redis.Scripter, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
	}
}

// Allow records a request for key and reports whether it fits in the window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	// Members must be unique even for requests in the same millisecond.
	member := fmt.Sprintf("%d-%d", now.UnixNano(), rl.seq.Add(1))

	result, err := slidingWindowScript.Run(ctx, rl.rdb, []string{key},
		now.UnixMilli(), rl.window.Milliseconds(), rl.limit, member).Int()
	if err != nil {
		return false, fmt.Errorf("limiter: sliding window for %q: %w", key, err)
	}
	return result == 0, nil
}

// IsRequestAllowed is Allow that fails open when Redis is unavailable.
func (rl *RateLimiter) IsRequestAllowed(ctx context.Context, key string) bool {
	ok, err := rl.Allow(ctx, key)
	if err != nil {
		log.Printf("Redis script error: %v", err)
		decisionsTotal.WithLabelValues("failopen").Inc()
		return true
	}
	if ok {
		decisionsTotal.WithLabelValues("allowed").Inc()
	} else {
		decisionsTotal.WithLabelValues("blocked").Inc()
	}
	return ok
}

// Middleware rejects requests from clients over their limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.IsRequestAllowed(r.Context(), keyPrefix+ClientIP(r)) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the first X-Forwarded-For hop, or the remote host.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
