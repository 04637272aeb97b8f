// Package cache provides ports.CacheStore implementations for balance
// reports: an in-process LRU and a shared Redis store.
package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ahrav/go-paddock/internal/ports"
)

// DefaultMemorySize is the entry limit used when NewMemoryStore gets a
// non-positive size.
const DefaultMemorySize = 128

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is a size-bounded LRU cache with per-entry expiry. It is safe
// for concurrent use.
type MemoryStore struct {
	cache *lru.Cache[string, memoryEntry]
	now   func() time.Time
}

// NewMemoryStore creates a store holding at most size entries.
func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	c, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &MemoryStore{cache: c, now: time.Now}, nil
}

// Get returns a copy of the value stored under key. Expired entries are
// evicted on access.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	if entry.expired(s.now()) {
		s.cache.Remove(key)
		return nil, false, nil
	}
	return clone(entry.value), true, nil
}

// Set stores a copy of value. A zero expiration keeps the entry until it
// is evicted.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	if expiration < 0 {
		return ports.NewCacheError(key, "set", fmt.Errorf("negative expiration %s", expiration))
	}
	entry := memoryEntry{value: clone(value)}
	if expiration > 0 {
		entry.expiresAt = s.now().Add(expiration)
	}
	s.cache.Add(key, entry)
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

// Clear removes every entry.
func (s *MemoryStore) Clear(context.Context) error {
	s.cache.Purge()
	return nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ ports.CacheStore = (*MemoryStore)(nil)
