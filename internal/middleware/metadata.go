package middleware

import (
	"context"
	"net"
	"net/http"
)

type contextKeyClientIP struct{}
type contextKeyUserAgent struct{}

// NewRequestMetadata returns a middleware that captures the client IP and
// User-Agent into the request context. The audit trail reads them from there,
// so every service that records processing events sees the same values the
// HTTP layer saw.
//
// Wire it after chi's RealIP middleware so RemoteAddr already reflects
// X-Forwarded-For when the service runs behind a proxy.
func NewRequestMetadata() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}

			ctx := context.WithValue(r.Context(), contextKeyClientIP{}, ip)
			ctx = context.WithValue(ctx, contextKeyUserAgent{}, r.UserAgent())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP returns the client IP captured by NewRequestMetadata, or "" when
// the request did not pass through it (background jobs, tests).
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(contextKeyClientIP{}).(string)
	return ip
}

// UserAgent returns the User-Agent captured by NewRequestMetadata, or "".
func UserAgent(ctx context.Context) string {
	ua, _ := ctx.Value(contextKeyUserAgent{}).(string)
	return ua
}
