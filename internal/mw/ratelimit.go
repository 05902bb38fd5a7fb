package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiters hands out one token bucket per client IP.
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
}

func newIPLimiters(r rate.Limit, b int) *ipLimiters {
	return &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.r, l.b)
		l.limiters[ip] = limiter
	}
	return limiter
}

// RateLimiter is a middleware for per-IP rate limiting. ipHeader, when set,
// names the header carrying the real client IP behind a proxy.
func RateLimiter(r rate.Limit, b int, ipHeader string) gin.HandlerFunc {
	limiters := newIPLimiters(r, b)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ipHeader != "" {
			if v := c.GetHeader(ipHeader); v != "" {
				ip = v
			}
		}
		if !limiters.get(ip).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
