package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockLimiter struct {
	allow bool
	retry time.Duration
	err   error
}

func (m mockLimiter) Allow(context.Context, string, int, time.Duration) (bool, time.Duration, error) {
	return m.allow, m.retry, m.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterFailOpenOnBackendError(t *testing.T) {
	rl := NewRateLimiter(mockLimiter{err: errors.New("redis down")}, 10, time.Minute, FailOpen, "webhook")
	h := rl.Middleware()(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected fail-open to allow request, got %d", rr.Code)
	}
}

func TestRateLimiterFailClosedOnBackendError(t *testing.T) {
	rl := NewRateLimiter(mockLimiter{err: errors.New("redis down")}, 10, time.Minute, FailClosed, "webhook")
	h := rl.Middleware()(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected fail-closed to reject request, got %d", rr.Code)
	}
}

func TestRateLimiterDeniedSetsRetryAfter(t *testing.T) {
	rl := NewRateLimiter(mockLimiter{allow: false, retry: 5 * time.Second}, 1, time.Minute, FailClosed, "webhook")
	h := rl.Middleware()(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestLocalFixedWindowLimiterEnforcesLimitPerKey(t *testing.T) {
	limiter := NewLocalFixedWindowLimiter()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, "10.0.0.1", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
	}
	allowed, retryAfter, err := limiter.Allow(ctx, "10.0.0.1", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if allowed {
		t.Fatal("expected fourth request to be denied")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retryAfter)
	}

	// Other sources are unaffected.
	allowed, _, err = limiter.Allow(ctx, "10.0.0.2", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow other key: %v", err)
	}
	if !allowed {
		t.Fatal("expected independent window per source address")
	}
}

func TestRateLimiterBypassSkipsLimiter(t *testing.T) {
	bypass := NewRequestBypassEvaluator(RequestBypassConfig{TrustedSourceCIDRs: []string{"10.0.0.0/8"}})
	rl := NewRateLimiter(mockLimiter{allow: false}, 1, time.Minute, FailClosed, "webhook").WithBypass(bypass)
	h := rl.Middleware()(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected trusted source to bypass limiter, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/webhooks/payments", nil)
	req.RemoteAddr = "192.168.1.1:4444"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected untrusted source to hit limiter, got %d", rr.Code)
	}
}
