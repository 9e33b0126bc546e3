package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gastrotour/pkg/ratelimit"

	"go.uber.org/zap"
)

func newLimitedHandler(maxRequests int, trustProxy bool) http.Handler {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), time.Minute, maxRequests)
	var inner http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return RateLimit(limiter, trustProxy, zap.NewNop())(inner)
}

func TestRateLimitIgnoresForwardedHeaderByDefault(t *testing.T) {
	handler := newLimitedHandler(3, false)

	// Varying X-Forwarded-For from the same peer must not reset the limit.
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
		req.RemoteAddr = "203.0.113.10:4711"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		want := http.StatusOK
		if i >= 3 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Fatalf("request %d: got status %d, want %d", i, rec.Code, want)
		}
	}
}

func TestRateLimitBehindProxyKeysOnFirstForwardedEntry(t *testing.T) {
	handler := newLimitedHandler(2, true)

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
		req.RemoteAddr = "10.0.0.1:8080"
		req.Header.Set("X-Forwarded-For", forwarded)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// Two hits for the same client, the proxy chain suffix is irrelevant.
	if got := send("198.51.100.7"); got != http.StatusOK {
		t.Fatalf("first request: got status %d, want 200", got)
	}
	if got := send("198.51.100.7, 10.0.0.1"); got != http.StatusOK {
		t.Fatalf("second request: got status %d, want 200", got)
	}
	if got := send("198.51.100.7, 172.16.0.2, 10.0.0.1"); got != http.StatusTooManyRequests {
		t.Fatalf("third request: got status %d, want 429", got)
	}

	// A different originating client keeps its own counter.
	if got := send("198.51.100.8"); got != http.StatusOK {
		t.Fatalf("other client: got status %d, want 200", got)
	}
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.5:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.7")

	if got := clientIP(req, false); got != "192.0.2.5" {
		t.Fatalf("got %q, want the peer address", got)
	}
	if got := clientIP(req, true); got != "198.51.100.7" {
		t.Fatalf("got %q, want the forwarded client", got)
	}
}
