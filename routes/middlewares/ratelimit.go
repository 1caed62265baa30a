package middlewares

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows perMinute requests per client IP, with bursts of the
// same size. Visitors idle for longer than expiry are forgotten.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	perMinute int
	expiry    time.Duration
}

func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		visitors:  make(map[string]*visitor),
		perMinute: perMinute,
		expiry:    10 * time.Minute,
	}
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.expiry {
			delete(rl.visitors, key)
		}
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.perMinute)), rl.perMinute)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Handler applies the limit; a non-positive limit disables it.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	if rl.perMinute <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !rl.allow(ip, time.Now()) {
			w.Header().Set("Retry-After", "60")
			httpx.LogStatus(w, http.StatusTooManyRequests, log.DebugLevel, "ratelimit."+ip)
			return
		}
		next.ServeHTTP(w, r)
	})
}
