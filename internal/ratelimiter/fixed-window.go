package ratelimiter

import (
	"sync"
	"time"
)

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type window struct {
	count   int
	startAt time.Time
}

// FixedWindowRateLimiter counts requests per client address inside a
// fixed window that restarts when it elapses.
type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]*window
	limit   int
	frame   time.Duration
}

func NewFixedWindowLimiter(limit int, frame time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		frame:   frame,
	}
}

// Allow reports whether the client may proceed, and if not, how long
// until its window resets.
func (rl *FixedWindowRateLimiter) Allow(addr string) (bool, time.Duration) {
	now := time.Now()

	rl.Lock()
	defer rl.Unlock()

	w, ok := rl.clients[addr]
	if !ok || now.Sub(w.startAt) >= rl.frame {
		rl.clients[addr] = &window{count: 1, startAt: now}
		rl.evictStale(now)
		return true, 0
	}

	if w.count < rl.limit {
		w.count++
		return true, 0
	}

	return false, rl.frame - now.Sub(w.startAt)
}

// evictStale drops windows past their frame while the lock is held, so
// the map does not grow with one entry per address forever.
func (rl *FixedWindowRateLimiter) evictStale(now time.Time) {
	for addr, w := range rl.clients {
		if now.Sub(w.startAt) >= rl.frame {
			delete(rl.clients, addr)
		}
	}
}
