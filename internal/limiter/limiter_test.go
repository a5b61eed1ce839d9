package limiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, limit, window), mr
}

func TestSlidingWindowAllows(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Second)
	ctx := context.Background()
	key := "limit:127.0.0.1"

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, key)
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if !ok {
			t.Errorf("request %d should have been allowed", i+1)
		}
	}
}

func TestSlidingWindowBlocks(t *testing.T) {
	limiter, _ := newTestLimiter(t, 0, time.Second)

	if limiter.IsRequestAllowed(context.Background(), "limit:127.0.0.1") {
		t.Error("request should have been blocked")
	}
}

func TestSlidingWindowAllowsAfterWindow(t *testing.T) {
	limiter, mr := newTestLimiter(t, 3, time.Second)
	ctx := context.Background()
	key := "limit:127.0.0.1"

	for i := 0; i < 3; i++ {
		if !limiter.IsRequestAllowed(ctx, key) {
			t.Errorf("request %d should have been allowed", i+1)
		}
	}
	if limiter.IsRequestAllowed(ctx, key) {
		t.Error("4th request should have been blocked")
	}

	mr.FastForward(2 * time.Second)
	if !limiter.IsRequestAllowed(ctx, key) {
		t.Error("request after time advance should be allowed")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if !limiter.IsRequestAllowed(ctx, "limit:a") {
		t.Fatal("first request for a should be allowed")
	}
	if !limiter.IsRequestAllowed(ctx, "limit:b") {
		t.Error("first request for b should be allowed")
	}
	if limiter.IsRequestAllowed(ctx, "limit:a") {
		t.Error("second request for a should be blocked")
	}
}

func TestFailsOpenWhenRedisDown(t *testing.T) {
	limiter, mr := newTestLimiter(t, 0, time.Second)
	mr.Close()

	before := testutil.ToFloat64(decisionsTotal.WithLabelValues("failopen"))

	if _, err := limiter.Allow(context.Background(), "limit:x"); err == nil {
		t.Error("Allow should report the Redis error")
	}
	if !limiter.IsRequestAllowed(context.Background(), "limit:x") {
		t.Error("limiter should fail open")
	}
	if got := testutil.ToFloat64(decisionsTotal.WithLabelValues("failopen")) - before; got != 1 {
		t.Errorf("failopen decisions = %v, want 1", got)
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2, time.Minute)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := limiter.Middleware(next)

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i, code := range want {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.7:4567"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != code {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, code)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Errorf("remote addr ip = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.5" {
		t.Errorf("forwarded ip = %q", got)
	}
}
