package httpapi

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientLimiter rate-limits per client address. Forwarding headers are only
// believed when the direct peer is one of the trusted proxies.
type ClientLimiter struct {
	mu      sync.Mutex
	m       map[string]*clientEntry
	r       rate.Limit
	b       int
	idle    time.Duration
	trusted map[string]bool
	now     func() time.Time
}

type clientEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewClientLimiter(reqPerSec float64, burst int, trustedProxies []string) *ClientLimiter {
	if burst < 1 {
		burst = 1
	}
	trusted := make(map[string]bool, len(trustedProxies))
	for _, p := range trustedProxies {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			trusted[ip.String()] = true
		}
	}
	return &ClientLimiter{
		m:       make(map[string]*clientEntry),
		r:       rate.Limit(reqPerSec),
		b:       burst,
		idle:    10 * time.Minute,
		trusted: trusted,
		now:     time.Now,
	}
}

func (cl *ClientLimiter) limiterFor(key string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	if e, ok := cl.m[key]; ok {
		e.seen = now
		return e.lim
	}
	e := &clientEntry{lim: rate.NewLimiter(cl.r, cl.b), seen: now}
	cl.m[key] = e
	return e.lim
}

// Allow reports whether the client behind r may make another request now.
func (cl *ClientLimiter) Allow(r *http.Request) bool {
	return cl.limiterFor(cl.clientKey(r)).AllowN(cl.now(), 1)
}

// Prune drops clients idle for longer than the idle window.
func (cl *ClientLimiter) Prune() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cutoff := cl.now().Add(-cl.idle)
	n := 0
	for k, e := range cl.m {
		if e.seen.Before(cutoff) {
			delete(cl.m, k)
			n++
		}
	}
	return n
}

func (cl *ClientLimiter) clientKey(r *http.Request) string {
	remote := remoteIP(r)
	if !cl.trusted[remote] {
		return remote
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return remote
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return host
}

// RateLimit answers 429 once a client exceeds cl. A nil limiter lets everything through.
func RateLimit(cl *ClientLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		if cl == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cl.Allow(r) {
				w.Header().Set("Retry-After", "1")
				WriteError(w, r, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
