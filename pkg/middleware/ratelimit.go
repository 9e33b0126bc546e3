package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"gastrotour/pkg/ratelimit"
	"gastrotour/pkg/utils"

	"go.uber.org/zap"
)

// RateLimit rejects requests over the per-IP limit with 429. The limiter
// backend is injected so counters can move out of process memory later.
// trustProxy must only be enabled behind a proxy that overwrites
// X-Forwarded-For; anywhere else the header is attacker-controlled.
func RateLimit(limiter *ratelimit.Limiter, trustProxy bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trustProxy)
			result := limiter.Check(ip)

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime.Unix(), 10))

			if !result.Allowed {
				retryAfter := int(result.RetryAfter.Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				logger.Warn("Rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseTooManyRequests(w, "Too many requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		// The first entry is the originating client; later entries are
		// appended by each proxy hop.
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			if idx := strings.Index(forwarded, ","); idx >= 0 {
				forwarded = forwarded[:idx]
			}
			if ip := strings.TrimSpace(forwarded); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
