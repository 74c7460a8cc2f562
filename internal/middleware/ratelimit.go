package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/crucial707/hci-users/internal/envelope"
	"golang.org/x/time/rate"
)

// IPRateLimiter limits requests per client IP using a token bucket per IP.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	now     func() time.Time
	proxies TrustedProxies
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter creates a per-IP rate limiter. limit is events per second; burst is max tokens per bucket.
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// PerMinute returns a limiter allowing n requests per minute per IP.
func PerMinute(n, burst int) *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(float64(n)/60.0), burst)
}

// CredentialRateLimiter is the limiter for registration and token issuance:
// 10 requests per minute per IP, burst 5.
func CredentialRateLimiter() *IPRateLimiter {
	return PerMinute(10, 5)
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = l.now()
	return c.limiter.AllowN(c.lastSeen, 1)
}

// Prune forgets clients not seen for idle and returns how many were removed.
func (l *IPRateLimiter) Prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-idle)
	removed := 0
	for ip, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked clients.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// TrustProxies sets the peers whose forwarding headers identify the client.
// Call it before the limiter serves requests.
func (l *IPRateLimiter) TrustProxies(p TrustedProxies) {
	l.proxies = p
}

// Middleware returns a chi-compatible middleware that answers 429 when the client IP exceeds the rate.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(l.proxies.ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			envelope.Status(w, http.StatusTooManyRequests, "Too many requests.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
