package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// defaultRateLimit is the sustained request rate per client.
	defaultRateLimit = rate.Limit(5)

	// defaultRateBurst absorbs short bursts above the sustained rate.
	defaultRateBurst = 10

	// limiterIdleTTL is how long an idle client's limiter is kept.
	limiterIdleTTL = 10 * time.Minute
)

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter applies a token-bucket rate limit per client IP. Idle
// entries are evicted opportunistically on new-client registration.
type clientLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientEntry
	limit      rate.Limit
	burst      int
	trustProxy bool
}

func newClientLimiter(limit rate.Limit, burst int, trustProxy bool) *clientLimiter {
	return &clientLimiter{
		clients:    make(map[string]*clientEntry),
		limit:      limit,
		burst:      burst,
		trustProxy: trustProxy,
	}
}

func (cl *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cl.allow(cl.clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (cl *clientLimiter) allow(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	entry, ok := cl.clients[ip]
	if !ok {
		cl.evictIdleLocked()
		entry = &clientEntry{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (cl *clientLimiter) evictIdleLocked() {
	cutoff := time.Now().Add(-limiterIdleTTL)
	for ip, entry := range cl.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(cl.clients, ip)
		}
	}
}

// clientIP identifies the caller. Proxy headers are honored only when the
// server was configured to trust them; otherwise they are spoofable.
func (cl *clientLimiter) clientIP(r *http.Request) string {
	if cl.trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if real := r.Header.Get("X-Real-IP"); real != "" {
			return real
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
