package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisLimiterForTest(t *testing.T) (*RedisFixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFixedWindowLimiter(client, "rl-test"), mr
}

func TestRedisFixedWindowLimiterAllowsUpToLimit(t *testing.T) {
	limiter, _ := newRedisLimiterForTest(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, _, err := limiter.Allow(ctx, "203.0.113.9", 5, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
	}
	allowed, retryAfter, err := limiter.Allow(ctx, "203.0.113.9", 5, time.Minute)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if allowed {
		t.Fatal("expected sixth request to be denied")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retryAfter)
	}
}

func TestRedisFixedWindowLimiterResetsAfterWindow(t *testing.T) {
	limiter, mr := newRedisLimiterForTest(t)
	ctx := context.Background()

	if allowed, _, err := limiter.Allow(ctx, "203.0.113.9", 1, time.Second); err != nil || !allowed {
		t.Fatalf("first request: allowed=%v err=%v", allowed, err)
	}
	if allowed, _, err := limiter.Allow(ctx, "203.0.113.9", 1, time.Second); err != nil || allowed {
		t.Fatalf("second request should be denied: allowed=%v err=%v", allowed, err)
	}

	mr.FastForward(2 * time.Second)

	if allowed, _, err := limiter.Allow(ctx, "203.0.113.9", 1, time.Second); err != nil || !allowed {
		t.Fatalf("request after window should be allowed: allowed=%v err=%v", allowed, err)
	}
}

func TestRedisFixedWindowLimiterSurfacesBackendError(t *testing.T) {
	limiter, mr := newRedisLimiterForTest(t)
	mr.Close()
	if _, _, err := limiter.Allow(context.Background(), "203.0.113.9", 5, time.Minute); err == nil {
		t.Fatal("expected error when redis is unavailable")
	}
}
