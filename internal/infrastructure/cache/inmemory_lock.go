package cache

import (
	"context"
	"sync"
	"time"

	"github.com/gastroshop/storefront/internal/domain/checkout"
)

// InMemoryLock implements SubmissionLock inside one process.
// It covers concurrent requests against a single storefront instance only.
type InMemoryLock struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewInMemoryLock creates an in-process lock
func NewInMemoryLock() *InMemoryLock {
	return &InMemoryLock{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// TryAcquire takes the lock for ttl. An expired holder is replaced.
func (l *InMemoryLock) TryAcquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, held := l.entries[key]; held && now.Before(expiresAt) {
		return false, nil
	}
	l.entries[key] = now.Add(ttl)
	return true, nil
}

// Release drops the lock
func (l *InMemoryLock) Release(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
	return nil
}

// Held reports whether key is currently locked (for testing/monitoring)
func (l *InMemoryLock) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	expiresAt, held := l.entries[key]
	return held && l.now().Before(expiresAt)
}

var _ checkout.SubmissionLock = (*InMemoryLock)(nil)
