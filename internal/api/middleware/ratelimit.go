package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/response"
)

// defaultIdleTTL is the shortest time a client is kept after its last request.
const defaultIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address. Clients idle for
// longer than the idle TTL are dropped when a new client arrives.
type RateLimiter struct {
	visitors  map[string]*visitor
	mu        sync.Mutex
	lastSweep time.Time

	limit     rate.Limit
	burstSize int
	idleTTL   time.Duration
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second per
// client with bursts of up to burst requests.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(rps),
		burstSize: burst,
		idleTTL:   idleTTL(rps, burst),
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

// idleTTL is at least the time an empty bucket needs to refill, so dropping
// an idle client never hands it more tokens than it would have had.
func idleTTL(rps float64, burst int) time.Duration {
	if rps <= 0 {
		return 24 * time.Hour
	}
	refill := float64(burst) / rps
	if refill > (24 * time.Hour).Seconds() {
		return 24 * time.Hour
	}
	if d := time.Duration(refill * float64(time.Second)); d > defaultIdleTTL {
		return d
	}
	return defaultIdleTTL
}

// WithClock replaces the time source used for buckets and eviction.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.now = now
	rl.lastSweep = now()
	return rl
}

// Len reports how many clients are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// getLimiter returns the limiter for key, creating it on first use.
func (rl *RateLimiter) getLimiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, exists := rl.visitors[key]; exists {
		v.lastSeen = now
		return v.limiter
	}

	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweepLocked(now)
	}

	limiter := rate.NewLimiter(rl.limit, rl.burstSize)
	rl.visitors[key] = &visitor{limiter: limiter, lastSeen: now}
	return limiter
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= rl.idleTTL {
			delete(rl.visitors, key)
		}
	}
	rl.lastSweep = now
}

// Allow reports whether a request from key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	now := rl.now()
	rl.mu.Unlock()
	return rl.getLimiter(key, now).AllowN(now, 1)
}

// Handler enforces the limit per client address. RealIP should run first so
// RemoteAddr is the client rather than a proxy.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", "1")
			response.RespondError(w, http.StatusTooManyRequests, "rate limit exceeded", "Too many requests. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
