package server

import (
	"sync"
	"time"
)

// rateLimiter applies a fixed-window count per key. Keys are workshop IDs,
// so a noisy integration cannot starve payment recording for other tenants.
type rateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*rateWindow
	sweeps  int
}

type rateWindow struct {
	start time.Time
	count int
}

// pruneEvery bounds map growth: every N calls, windows older than one
// full period are dropped.
const pruneEvery = 512

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*rateWindow),
	}
}

func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweeps++
	if r.sweeps >= pruneEvery {
		r.sweeps = 0
		for k, w := range r.windows {
			if now.Sub(w.start) > r.window {
				delete(r.windows, k)
			}
		}
	}

	w := r.windows[key]
	if w == nil || now.Sub(w.start) > r.window {
		w = &rateWindow{start: now}
		r.windows[key] = w
	}

	if w.count >= r.limit {
		return false
	}

	w.count++
	return true
}
