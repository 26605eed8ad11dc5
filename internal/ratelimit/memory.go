package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type windowEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryStore keeps counters for at most size callers; the least recently
// seen caller is evicted first.
type MemoryStore struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *windowEntry]
	now     func() time.Time
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	cache, err := lru.New[string, *windowEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit cache: %w", err)
	}
	return &MemoryStore{entries: cache, now: time.Now}, nil
}

func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries.Get(key)
	if !ok || now.After(entry.expiresAt) {
		entry = &windowEntry{expiresAt: now.Add(window)}
		s.entries.Add(key, entry)
	}
	entry.count++

	return entry.count <= limit, nil
}

func (s *MemoryStore) Len() int {
	return s.entries.Len()
}
