package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
)

// RateLimitConfig configures rate limiting behavior
type RateLimitConfig struct {
	// MaxRequests is the maximum number of requests allowed per window
	MaxRequests int

	// Window is the time window for rate limiting
	Window time.Duration

	// KeyFunc extracts the rate limit key from context; user ID by default
	KeyFunc func(*core.InteractionContext) string

	// Message shown when rate limited
	Message string

	// Store tracks counts; in-memory when nil
	Store RateLimitStore
}

// RateLimitStore tracks rate limit data
type RateLimitStore interface {
	// Increment increments the counter for a key and returns the new count
	Increment(key string, window time.Duration) (int, error)
}

// RateLimitMiddleware rejects interactions over the configured rate
func RateLimitMiddleware(config *RateLimitConfig) core.Middleware {
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(ctx *core.InteractionContext) string { return ctx.UserID }
	}
	message := config.Message
	if message == "" {
		message = fmt.Sprintf("You're doing that too fast! Please wait %v before trying again.", config.Window)
	}
	store := config.Store
	if store == nil {
		store = NewMemoryRateLimitStore(nil)
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			key := keyFunc(ctx)
			if key == "" {
				return next.Handle(ctx)
			}

			count, err := store.Increment(key, config.Window)
			if err != nil {
				// a broken limiter must not lock users out
				return next.Handle(ctx)
			}
			if count > config.MaxRequests {
				return &core.HandlerResult{
					Response: core.NewEphemeralResponse("⏱️ " + message),
				}, nil
			}

			return next.Handle(ctx)
		})
	}
}

// UserRateLimitMiddleware applies per-user rate limiting
func UserRateLimitMiddleware(maxRequests int, window time.Duration) core.Middleware {
	return RateLimitMiddleware(&RateLimitConfig{
		MaxRequests: maxRequests,
		Window:      window,
	})
}

// MemoryRateLimitStore is a fixed-window in-memory store. Expired buckets
// are swept on write, so it needs no background goroutine.
type MemoryRateLimitStore struct {
	mu        sync.Mutex
	now       func() time.Time
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
}

// NewMemoryRateLimitStore creates a new in-memory store; now defaults to time.Now
func NewMemoryRateLimitStore(now func() time.Time) *MemoryRateLimitStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryRateLimitStore{
		now:     now,
		buckets: make(map[string]*bucket),
	}
}

// Increment increments the counter for a key
func (s *MemoryRateLimitStore) Increment(key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > time.Minute {
		for k, b := range s.buckets {
			if !now.Before(b.resetAt) {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{resetAt: now.Add(window)}
		s.buckets[key] = b
	}
	b.count++

	return b.count, nil
}

// Len returns the number of live buckets
func (s *MemoryRateLimitStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
