package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware_AllowsWithinLimit(t *testing.T) {
	handler := RateLimitMiddleware(5)(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(ClientIDHeader, "client-a")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestRateLimitMiddleware_BlocksOverLimit(t *testing.T) {
	handler := RateLimitMiddleware(3)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(ClientIDHeader, "client-a")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(ClientIDHeader, "client-a")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
}

func TestRateLimitMiddleware_KeysOnClientID(t *testing.T) {
	handler := RateLimitMiddleware(2)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(ClientIDHeader, "client-a")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(ClientIDHeader, "client-b")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("client-b should not be rate-limited, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(ClientIDHeader, "client-a")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("client-a should be rate-limited, got %d", w.Code)
	}
}

func TestRateLimitMiddleware_ZeroDisables(t *testing.T) {
	handler := RateLimitMiddleware(0)(okHandler())

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1)
	rl.now = func() time.Time { return now }

	if !rl.allow("a") {
		t.Fatal("first request should pass")
	}
	if rl.allow("a") {
		t.Fatal("second request inside the window should be blocked")
	}
	now = now.Add(61 * time.Second)
	if !rl.allow("a") {
		t.Error("request after the window should pass")
	}
}

func TestRateLimitMiddleware_KeysOnHostWithoutPort(t *testing.T) {
	handler := RateLimitMiddleware(2)(okHandler())

	send := func(remote string) int {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	send("10.0.0.1:40001")
	send("10.0.0.1:40002")
	if code := send("10.0.0.1:40003"); code != http.StatusTooManyRequests {
		t.Errorf("new port on the same host should share the bucket, got %d", code)
	}
	if code := send("10.0.0.2:40001"); code != http.StatusOK {
		t.Errorf("other host should not be rate-limited, got %d", code)
	}
}

func TestRateLimiter_DropsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(10)
	rl.now = func() time.Time { return now }

	rl.allow("a")
	rl.allow("b")
	now = now.Add(2 * time.Minute)
	rl.allow("b")
	if len(rl.limiters) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(rl.limiters))
	}

	now = now.Add(limiterIdle - time.Minute)
	rl.allow("c")
	if _, ok := rl.limiters["a"]; ok {
		t.Error("idle bucket a should have been dropped")
	}
	if len(rl.limiters) != 2 {
		t.Errorf("expected buckets b and c, got %d", len(rl.limiters))
	}
}

func TestAdminAuthMiddleware_EmptyTokenAllowsAll(t *testing.T) {
	handler := AdminAuthMiddleware("")(okHandler())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	called := false
	handler := RequestLogger(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(ClientIDHeader, "test-client")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Error("inner handler was not called")
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", w.Code)
	}
}
