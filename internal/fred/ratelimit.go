package fred

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// slotBuffer is added to the computed wait so the oldest timestamp has
// actually left the window when the caller retries.
const slotBuffer = 100 * time.Millisecond

// RateLimiter bounds outbound request rate with a sliding time window: no
// more than maxRequests acquisitions complete within any trailing window.
// State is in-memory only; the window resets empty on process restart.
type RateLimiter struct {
	maxRequests int
	window      time.Duration

	mu       sync.Mutex
	requests []time.Time
}

// NewRateLimiter creates a sliding-window rate limiter.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
	}
}

// Acquire blocks until a request slot is available or the context is done.
// The prune-check-append sequence runs under the mutex; the wait does not,
// so blocked callers never serialize each other's sleeps. Fairness is
// FIFO-by-retry rather than strictly ordered, which is fine because callers
// are interchangeable fetch operations.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()

		// Drop timestamps that have left the window.
		kept := r.requests[:0]
		for _, t := range r.requests {
			if now.Sub(t) < r.window {
				kept = append(kept, t)
			}
		}
		r.requests = kept

		if len(r.requests) < r.maxRequests {
			r.requests = append(r.requests, now)
			r.mu.Unlock()
			return nil
		}

		oldest := r.requests[0]
		wait := r.window - now.Sub(oldest) + slotBuffer
		inWindow := len(r.requests)
		r.mu.Unlock()

		logrus.WithFields(logrus.Fields{
			"in_window": inWindow,
			"max":       r.maxRequests,
			"wait":      wait,
		}).Warn("Rate limit reached, waiting for a slot")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// InWindow reports how many acquisitions currently count against the limit.
func (r *RateLimiter) InWindow() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	count := 0
	for _, t := range r.requests {
		if now.Sub(t) < r.window {
			count++
		}
	}
	return count
}
