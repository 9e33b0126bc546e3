package ratelimit

import (
	"sync"
	"time"
)

// Result reports the outcome of a single rate-limit check.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Store holds per-key counters for a fixed window. It exists as an
// interface so the in-memory implementation can be swapped for a shared
// store when the app outgrows a single process.
type Store interface {
	// Incr bumps the counter for key within the given window and returns
	// the new count plus the window's reset time.
	Incr(key string, window time.Duration) (count int, resetTime time.Time)
}

type memoryEntry struct {
	count      int
	resetTime  time.Time
	lastAccess time.Time
}

// MemoryStore is a single-process counter store. Counters reset on
// restart, which is acceptable at hobby scale.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
	}
	go s.cleanupLoop()
	return s
}

func (s *MemoryStore) Incr(key string, window time.Duration) (int, time.Time) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || now.After(entry.resetTime) {
		entry = &memoryEntry{
			count:      0,
			resetTime:  now.Add(window),
			lastAccess: now,
		}
		s.entries[key] = entry
	}

	entry.count++
	entry.lastAccess = now
	return entry.count, entry.resetTime
}

// cleanupLoop drops entries that have not been touched for a while so
// memory does not grow with every unique client IP ever seen.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-30 * time.Minute)

		s.mu.Lock()
		for key, entry := range s.entries {
			if entry.lastAccess.Before(cutoff) {
				delete(s.entries, key)
			}
		}
		s.mu.Unlock()
	}
}

// Limiter applies a fixed-window limit per key on top of a Store.
type Limiter struct {
	store       Store
	window      time.Duration
	maxRequests int
}

func NewLimiter(store Store, window time.Duration, maxRequests int) *Limiter {
	return &Limiter{
		store:       store,
		window:      window,
		maxRequests: maxRequests,
	}
}

func (l *Limiter) Check(key string) Result {
	count, resetTime := l.store.Incr(key, l.window)

	remaining := l.maxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	if count > l.maxRequests {
		return Result{
			Allowed:    false,
			Remaining:  0,
			ResetTime:  resetTime,
			RetryAfter: time.Until(resetTime),
		}
	}

	return Result{
		Allowed:   true,
		Remaining: remaining,
		ResetTime: resetTime,
	}
}
