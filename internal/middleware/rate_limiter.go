package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
}

// RateLimiter keeps one token bucket per client address, so a single noisy
// credential-management system exhausts its own budget without starving the
// others. Idle buckets are evicted after an hour.
type RateLimiter struct {
	config  RateLimiterConfig
	clients *gocache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		config:  config,
		clients: gocache.New(time.Hour, 10*time.Minute),
	}
}

func (rl *RateLimiter) limiterFor(clientIP string) *rate.Limiter {
	if cached, ok := rl.clients.Get(clientIP); ok {
		return cached.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	if err := rl.clients.Add(clientIP, limiter, gocache.DefaultExpiration); err != nil {
		// Lost a create race; use the bucket the other request installed.
		if cached, ok := rl.clients.Get(clientIP); ok {
			return cached.(*rate.Limiter)
		}
	}
	return limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
