package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"article-api/helper"
	"article-api/metrics"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a background loop that drops idle clients.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		config:   config,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware answers 429 with Retry-After once a client's bucket is empty.
func (rl *RateLimiter) Middleware(h *helper.HTTPHelper, recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiterFor(c.ClientIP()).Allow() {
			c.Next()
			return
		}

		recorder.RecordRateLimited()
		c.Header("Retry-After", strconv.Itoa(retryAfter(rl.config.Rate)))
		h.SendErrorStatus(c, http.StatusTooManyRequests, "rate limit exceeded")
		c.Abort()
	}
}

func (rl *RateLimiter) ClientCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.config.Rate, rl.config.Burst)}
		rl.limiters[ip] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops clients idle for more than two cleanup intervals.
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.config.CleanupInterval * 2

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, ip)
		}
	}
}

func retryAfter(r rate.Limit) int {
	if r <= 0 {
		return 1
	}
	sec := int(math.Ceil(1.0 / float64(r)))
	if sec < 1 {
		sec = 1
	}
	return sec
}
