package api

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/fanbacker/internal/types"
)

// RateLimiter manages per-caller request rate limiting
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex

	// Rate limits per role (requests per second)
	artistLimit    rate.Limit
	investorLimit  rate.Limit
	anonymousLimit rate.Limit

	// Burst size (number of requests that can be made in a burst)
	burstSize int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(artistRPS, investorRPS, anonymousRPS int) *RateLimiter {
	return &RateLimiter{
		limiters:       make(map[string]*rate.Limiter),
		artistLimit:    rate.Limit(artistRPS),
		investorLimit:  rate.Limit(investorRPS),
		anonymousLimit: rate.Limit(anonymousRPS),
		burstSize:      10,
	}
}

// getLimiter returns the rate limiter for a specific caller and role
func (rl *RateLimiter) getLimiter(key string, role types.UserRole) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	var limit rate.Limit
	switch role {
	case types.RoleArtist:
		limit = rl.artistLimit
	case types.RoleInvestor:
		limit = rl.investorLimit
	default:
		limit = rl.anonymousLimit
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check in case another goroutine created it
	if limiter, exists := rl.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(limit, rl.burstSize)
	rl.limiters[key] = limiter

	return limiter
}

// RateLimitMiddleware creates a middleware that enforces rate limiting
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-User-ID")
			role := types.UserRole(r.Header.Get("X-User-Role"))
			if key == "" {
				// Anonymous callers are limited per source address
				key = r.RemoteAddr
				role = ""
			}

			limiter := rl.getLimiter(key, role)
			if !limiter.Allow() {
				respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded. Please try again later.", map[string]interface{}{
					"limit": limiter.Limit(),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
