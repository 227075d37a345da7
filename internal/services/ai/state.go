package ai

import (
	"sync"
	"time"
)

// RateLimitState tracks consecutive generation failures and the resulting
// backoff window. It is shared by every call going through a Client, so
// all access is serialized behind a mutex. Construct one per process and
// inject it; tests can instantiate independent copies.
type RateLimitState struct {
	mu             sync.Mutex
	lastErrorAt    time.Time
	failures       int
	backoffUntil   time.Time
	fallbackActive bool
}

// NewRateLimitState creates a fresh state with no recorded failures
func NewRateLimitState() *RateLimitState {
	return &RateLimitState{}
}

// RecordSuccess resets the state to defaults
func (s *RateLimitState) RecordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = 0
	s.backoffUntil = time.Time{}
	s.fallbackActive = false
}

// RecordRateLimit registers a rate-limited failure. The backoff window
// grows linearly with the consecutive failure count (n * 5s). Returns
// the delay until the window closes.
func (s *RateLimitState) RecordRateLimit(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures++
	s.lastErrorAt = now
	delay := time.Duration(s.failures) * 5 * time.Second
	s.backoffUntil = now.Add(delay)
	s.fallbackActive = true

	return delay
}

// RecordFallback registers a retryable failure on the resume fallback
// chain and returns the new consecutive failure count
func (s *RateLimitState) RecordFallback(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures++
	s.lastErrorAt = now
	s.fallbackActive = true

	return s.failures
}

// FallbackActive reports whether the lighter model should be preferred
func (s *RateLimitState) FallbackActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallbackActive
}

// Failures returns the consecutive failure count
func (s *RateLimitState) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

// BackoffUntil returns the end of the current backoff window
func (s *RateLimitState) BackoffUntil() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backoffUntil
}
