package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/lexdesk/backoffice/internal/metrics"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/rs/zerolog/log"
)

// PlatformKeyHeader carries the operator key for the cross-tenant administration routes
const PlatformKeyHeader = "X-Platform-Key"

// PlatformKey admits requests whose X-Platform-Key equals key. An empty key admits everything.
func PlatformKey(key string) func(http.Handler) http.Handler {
	expected := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			given := []byte(r.Header.Get(PlatformKeyHeader))
			if subtle.ConstantTimeCompare(given, expected) != 1 {
				metrics.GuardDecisions.WithLabelValues("platform", "unauthenticated").Inc()
				log.Warn().Str("path", r.URL.Path).Msg("Platform key rejected")
				respond.Message(w, http.StatusUnauthorized, "invalid platform key")
				return
			}
			metrics.GuardDecisions.WithLabelValues("platform", "allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}
