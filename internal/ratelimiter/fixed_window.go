package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowRateLimiter counts hits per key (typically a caller IP) inside
// a fixed window and rejects once the limit is reached.
type FixedWindowRateLimiter struct {
	sync.RWMutex
	counts map[string]int
	limit  int
	window time.Duration
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowRateLimiter {
	rl := &FixedWindowRateLimiter{
		counts: make(map[string]int),
		limit:  limit,
		window: window,
	}
	go rl.cleanup()
	return rl
}

func (rl *FixedWindowRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	for range ticker.C {
		rl.Lock()
		rl.counts = make(map[string]int)
		rl.Unlock()
	}
}

func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.RLock()
	count, exists := rl.counts[key]
	rl.RUnlock()

	if !exists || count < rl.limit {
		rl.Lock()
		rl.counts[key]++
		rl.Unlock()
		return true, 0
	}

	return false, rl.window
}
