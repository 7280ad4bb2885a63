package entrymeta

import (
	"sync"
	"time"
)

// AttemptLimiter throttles failed password attempts per client key. The app
// keeps one for admin login and one for unlocking protected posts.
type AttemptLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

// NewAttemptLimiter allows at most max failures per key within window.
func NewAttemptLimiter(max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		failures: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// prune drops failures older than the window. Callers hold l.mu.
func (l *AttemptLimiter) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	hits := l.failures[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.failures, key)
		return nil
	}
	l.failures[key] = kept
	return kept
}

// Check reports whether key may make another attempt. It records nothing.
func (l *AttemptLimiter) Check(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key)) < l.max
}

// Fail records a failed attempt for key.
func (l *AttemptLimiter) Fail(key string) {
	l.mu.Lock()
	l.failures[key] = append(l.prune(key), l.now())
	l.mu.Unlock()
}

// Reset forgets all failures for key, e.g. after a successful login.
func (l *AttemptLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.failures, key)
	l.mu.Unlock()
}

// Sweep prunes every key. The server runs it periodically so idle clients do
// not accumulate.
func (l *AttemptLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.failures {
		l.prune(key)
	}
}

// Len returns the number of keys with failures on record.
func (l *AttemptLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.failures)
}
