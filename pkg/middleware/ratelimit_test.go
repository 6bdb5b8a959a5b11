package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/freebsdly/ops-console/pkg/contextkeys"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		rl := NewRateLimiter(&RateLimitConfig{
			RequestsPerWindow: 5,
			WindowDuration:    time.Minute,
			BurstSize:         0,
		})

		for i := 0; i < 5; i++ {
			if !rl.Allow("user:alice") {
				t.Fatalf("request %d should be allowed", i+1)
			}
		}
	})

	t.Run("denies requests over limit", func(t *testing.T) {
		rl := NewRateLimiter(&RateLimitConfig{
			RequestsPerWindow: 2,
			WindowDuration:    time.Minute,
			BurstSize:         0,
		})

		rl.Allow("user:alice")
		rl.Allow("user:alice")
		if rl.Allow("user:alice") {
			t.Error("third request should be denied")
		}
	})

	t.Run("tracks keys independently", func(t *testing.T) {
		rl := NewRateLimiter(&RateLimitConfig{
			RequestsPerWindow: 1,
			WindowDuration:    time.Minute,
			BurstSize:         0,
		})

		rl.Allow("user:alice")
		if rl.Allow("user:alice") {
			t.Error("alice should be limited")
		}
		if !rl.Allow("user:bob") {
			t.Error("bob should not be affected by alice's limit")
		}
	})

	t.Run("burst extends the initial budget", func(t *testing.T) {
		rl := NewRateLimiter(&RateLimitConfig{
			RequestsPerWindow: 1,
			WindowDuration:    time.Minute,
			BurstSize:         2,
		})

		for i := 0; i < 3; i++ {
			if !rl.Allow("user:alice") {
				t.Fatalf("request %d should be within burst budget", i+1)
			}
		}
		if rl.Allow("user:alice") {
			t.Error("request beyond burst budget should be denied")
		}
	})

	t.Run("nil config falls back to defaults", func(t *testing.T) {
		rl := NewRateLimiter(nil)
		if rl.config.RequestsPerWindow != 100 {
			t.Errorf("expected default of 100 requests, got %d", rl.config.RequestsPerWindow)
		}
	})
}

func TestRateLimiter_Remaining(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{
		RequestsPerWindow: 10,
		WindowDuration:    time.Minute,
		BurstSize:         0,
	})

	if got := rl.Remaining("user:alice"); got != 10 {
		t.Errorf("expected full budget 10 for unseen key, got %d", got)
	}

	rl.Allow("user:alice")
	rl.Allow("user:alice")
	if got := rl.Remaining("user:alice"); got != 8 {
		t.Errorf("expected 8 remaining, got %d", got)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{
		RequestsPerWindow: 10,
		WindowDuration:    time.Millisecond,
		BurstSize:         0,
	})

	rl.Allow("user:alice")
	time.Sleep(5 * time.Millisecond)
	rl.Cleanup()

	rl.mu.RLock()
	_, exists := rl.buckets["user:alice"]
	rl.mu.RUnlock()
	if exists {
		t.Error("expected stale bucket to be removed")
	}
}

func TestRateLimitMiddleware_Handler(t *testing.T) {
	t.Run("keys signed-in callers by user id", func(t *testing.T) {
		m := NewRateLimitMiddleware()
		handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/api/v1/menus", nil)
		req = req.WithContext(contextkeys.WithUserID(req.Context(), "alice"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		if w.Header().Get("X-RateLimit-Limit") != "1000" {
			t.Errorf("expected per-user limit header 1000, got %s", w.Header().Get("X-RateLimit-Limit"))
		}
		if m.userLimiter.Remaining("user:alice") >= 1050 {
			t.Error("expected a token to be consumed from the user bucket")
		}
	})

	t.Run("keys anonymous callers by ip", func(t *testing.T) {
		m := NewRateLimitMiddleware()
		handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/api/v1/menus", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Header().Get("X-RateLimit-Limit") != "100" {
			t.Errorf("expected anonymous limit header 100, got %s", w.Header().Get("X-RateLimit-Limit"))
		}
		if m.anonymousLimiter.Remaining("ip:203.0.113.9") >= 110 {
			t.Error("expected a token to be consumed from the ip bucket")
		}
	})

	t.Run("returns 429 when exhausted", func(t *testing.T) {
		m := &RateLimitMiddleware{
			userLimiter: NewRateLimiter(&RateLimitConfig{
				RequestsPerWindow: 1,
				WindowDuration:    time.Minute,
				BurstSize:         0,
			}),
			anonymousLimiter: NewRateLimiter(nil),
		}
		handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		ctx := contextkeys.WithUserID(context.Background(), "alice")

		req := httptest.NewRequest("GET", "/api/v1/menus", nil).WithContext(ctx)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("first request should pass, got %d", w.Code)
		}

		req = httptest.NewRequest("GET", "/api/v1/menus", nil).WithContext(ctx)
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("expected status 429, got %d", w.Code)
		}
		if w.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After header")
		}
		if w.Header().Get("X-RateLimit-Remaining") != "0" {
			t.Errorf("expected remaining 0, got %s", w.Header().Get("X-RateLimit-Remaining"))
		}
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		remote    string
		want      string
	}{
		{name: "prefers x-forwarded-for", forwarded: "203.0.113.9", realIP: "198.51.100.1", remote: "10.0.0.1:1234", want: "203.0.113.9"},
		{name: "falls back to x-real-ip", realIP: "198.51.100.1", remote: "10.0.0.1:1234", want: "198.51.100.1"},
		{name: "falls back to remote addr", remote: "10.0.0.1:1234", want: "10.0.0.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDistributedRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()

	t.Run("allows until window count reached", func(t *testing.T) {
		rl := NewDistributedRateLimiter(client, &RateLimitConfig{
			RequestsPerWindow: 3,
			WindowDuration:    time.Minute,
		}, "test:allow")

		for i := 0; i < 3; i++ {
			allowed, err := rl.Allow(ctx, "user:alice")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !allowed {
				t.Fatalf("request %d should be allowed", i+1)
			}
		}

		allowed, err := rl.Allow(ctx, "user:alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if allowed {
			t.Error("fourth request should be denied")
		}
	})

	t.Run("remaining reflects window usage", func(t *testing.T) {
		rl := NewDistributedRateLimiter(client, &RateLimitConfig{
			RequestsPerWindow: 5,
			WindowDuration:    time.Minute,
		}, "test:remaining")

		remaining, err := rl.Remaining(ctx, "user:bob")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if remaining != 5 {
			t.Errorf("expected full budget 5, got %d", remaining)
		}

		rl.Allow(ctx, "user:bob")
		rl.Allow(ctx, "user:bob")

		remaining, err = rl.Remaining(ctx, "user:bob")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if remaining != 3 {
			t.Errorf("expected 3 remaining, got %d", remaining)
		}
	})

	t.Run("reset clears the window", func(t *testing.T) {
		rl := NewDistributedRateLimiter(client, &RateLimitConfig{
			RequestsPerWindow: 1,
			WindowDuration:    time.Minute,
		}, "test:reset")

		rl.Allow(ctx, "user:carol")
		if allowed, _ := rl.Allow(ctx, "user:carol"); allowed {
			t.Fatal("second request should be denied")
		}

		if err := rl.Reset(ctx, "user:carol"); err != nil {
			t.Fatalf("reset failed: %v", err)
		}
		if allowed, _ := rl.Allow(ctx, "user:carol"); !allowed {
			t.Error("request after reset should be allowed")
		}
	})

	t.Run("fails open when redis is down", func(t *testing.T) {
		deadClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		defer deadClient.Close()

		rl := NewDistributedRateLimiter(deadClient, nil, "test:down")
		allowed, err := rl.Allow(ctx, "user:alice")
		if err == nil {
			t.Error("expected redis error")
		}
		if !allowed {
			t.Error("expected fail-open on redis error")
		}
	})
}

func TestDistributedRateLimitMiddleware_Handler(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	m := NewDistributedRateLimitMiddleware(client)
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/menus", nil)
	req = req.WithContext(contextkeys.WithUserID(req.Context(), "alice"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Header().Get("X-RateLimit-Limit") != "1000" {
		t.Errorf("expected per-user limit header 1000, got %s", w.Header().Get("X-RateLimit-Limit"))
	}
	if w.Header().Get("X-RateLimit-Remaining") != "999" {
		t.Errorf("expected remaining 999, got %s", w.Header().Get("X-RateLimit-Remaining"))
	}

	if err := m.HealthCheck(context.Background()); err != nil {
		t.Errorf("health check failed: %v", err)
	}
}
