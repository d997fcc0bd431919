package middleware

import (
	"fmt"
	"sync"
	"time"

	"recipe-matcher/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration, now time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	elapsed := now.Sub(rl.lastTime).Seconds()
	if elapsed > 0 {
		rl.tokens = min(rl.capacity, rl.tokens+elapsed*rl.rate)
		rl.lastTime = now
	}

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// ipLimiters 每個來源 IP 各自一個令牌桶
type ipLimiters struct {
	mu        sync.Mutex
	limiters  map[string]*RateLimiter
	requests  int
	window    time.Duration
	lastPurge time.Time
	now       func() time.Time
}

func (l *ipLimiters) allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	// 閒置超過一個視窗的桶已經補滿，可以直接丟棄
	if now.Sub(l.lastPurge) > l.window {
		for k, rl := range l.limiters {
			rl.mu.Lock()
			idle := now.Sub(rl.lastTime) > l.window
			rl.mu.Unlock()
			if idle {
				delete(l.limiters, k)
			}
		}
		l.lastPurge = now
	}
	rl, ok := l.limiters[ip]
	if !ok {
		rl = NewRateLimiter(l.requests, l.window, now)
		l.limiters[ip] = rl
	}
	l.mu.Unlock()

	return rl.Allow(now)
}

// RateLimit 依來源 IP 限流的中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return rateLimit(requests, window, time.Now)
}

func rateLimit(requests int, window time.Duration, now func() time.Time) gin.HandlerFunc {
	limiters := &ipLimiters{
		limiters:  make(map[string]*RateLimiter),
		requests:  requests,
		window:    window,
		lastPurge: now(),
		now:       now,
	}

	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			common.WriteError(c, common.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
