package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting.
type Limiter interface {
	Allow(instanceID string) bool
}

// InMemoryLimiter is an implementation of Limiter stored in memory,
// keyed by pagination-controller instance. It throttles sentinel
// visibility bursts so one scroll flurry cannot hammer the API.
type InMemoryLimiter struct {
	instances map[string]*rate.Limiter
	mu        sync.Mutex
	r         rate.Limit
	b         int
}

// NewInMemoryLimiter creates a new rate limiter.
// Example: NewInMemoryLimiter(2, time.Second, 4) -> allows 2 triggers per
// second with a burst of 4.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) Limiter {
	return &InMemoryLimiter{
		instances: make(map[string]*rate.Limiter),
		r:         rate.Every(per / time.Duration(requests)),
		b:         burst,
	}
}

// Allow checks if an instance is allowed to trigger another load.
func (l *InMemoryLimiter) Allow(instanceID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.instances[instanceID]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.instances[instanceID] = limiter
	}

	return limiter.Allow()
}

// Unlimited returns a limiter that always allows. Used by tests and by
// callers that already gate triggers elsewhere.
func Unlimited() Limiter { return unlimited{} }

type unlimited struct{}

func (unlimited) Allow(string) bool { return true }
