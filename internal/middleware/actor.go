package middleware

import (
	"net"
	"net/http"

	"github.com/lexdesk/backoffice/internal/services"
)

// Actor records the client address and user agent for the audit log.
// RemoteAddr is already rewritten by chi's RealIP when it runs first.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := services.WithActor(r.Context(), services.Actor{
			IP:        clientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
