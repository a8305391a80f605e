package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/lexdesk/backoffice/internal/metrics"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginLimiter throttles login attempts per tenant and client address
type LoginLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

// NewLoginLimiter allows perSecond attempts per key with the given burst.
// Keys unused for idle are dropped by Sweep.
func NewLoginLimiter(perSecond float64, burst int, idle time.Duration) *LoginLimiter {
	return &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     idle,
		now:      time.Now,
	}
}

func (l *LoginLimiter) get(key string) *rate.Limiter {
	now := l.now()

	l.mu.RLock()
	entry, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		l.mu.Lock()
		entry.lastSeen = now
		l.mu.Unlock()
		return entry.limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if entry, exists := l.limiters[key]; exists {
		entry.lastSeen = now
		return entry.limiter
	}

	entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
	l.limiters[key] = entry
	return entry.limiter
}

// Allow reports whether an attempt for key may proceed now
func (l *LoginLimiter) Allow(key string) bool {
	return l.get(key).AllowN(l.now(), 1)
}

// Sweep drops limiters idle for longer than the configured idle period
func (l *LoginLimiter) Sweep() int {
	cutoff := l.now().Add(-l.idle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (l *LoginLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.limiters)
}

// Middleware rejects requests over the limit with 429. It must run after Tenant.
func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, _ := GetTenantID(r.Context())
		key := tenantID.String() + "|" + clientIP(r)

		if !l.Allow(key) {
			metrics.LoginAttempts.WithLabelValues("throttled").Inc()
			log.Warn().Str("tenant_id", tenantID.String()).Str("ip", clientIP(r)).Msg("Login throttled")

			retry := time.Second
			if l.limit > 0 {
				retry = time.Duration(float64(time.Second) / float64(l.limit))
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds()+0.999)))
			respond.Message(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}
		next.ServeHTTP(w, r)
	})
}
