package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the configuration for the rate limiter
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterData keeps one limiter per client address.
type rateLimiterData struct {
	config  RateLimiterConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
	now     func() time.Time
}

const limiterIdleTTL = 10 * time.Minute

func (d *rateLimiterData) allow(key string) bool {
	d.mu.Lock()
	now := d.now()
	cl, ok := d.clients[key]
	if !ok {
		d.evictIdle(now)
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(d.config.RequestsPerSecond), d.config.Burst)}
		d.clients[key] = cl
	}
	cl.lastSeen = now
	d.mu.Unlock()

	return cl.limiter.AllowN(now, 1)
}

// evictIdle drops limiters not used for a while. Called with mu held.
func (d *rateLimiterData) evictIdle(now time.Time) {
	for key, cl := range d.clients {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(d.clients, key)
		}
	}
}

// NewRateLimiterMiddleware creates a new rate limiter middleware keyed by client IP.
func NewRateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	data := &rateLimiterData{
		config:  config,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}

	return func(c *gin.Context) {
		if !data.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
