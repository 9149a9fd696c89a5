package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// memoryStoreSize caps tracked identities; the LRU evicts the least
// recently seen beyond that, which at worst resets an idle window.
const memoryStoreSize = 10000

// MemoryStore is the default single-process store: an expirable LRU from
// identity to window state. The cache TTL doubles as a garbage collector;
// correctness still relies on the per-entry ResetAt check, since an entry
// touched by traffic stays cached past its window.
type MemoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, Entry]
}

// NewMemoryStore builds a store whose cache entries expire after window.
func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: expirable.NewLRU[string, Entry](memoryStoreSize, nil, window),
	}
}

// Take implements Store with a read-modify-write under a single lock.
func (s *MemoryStore) Take(_ context.Context, identity string, p Policy, now time.Time) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache.Get(identity)
	if !ok || !now.Before(entry.ResetAt) {
		entry = Entry{Count: 0, ResetAt: now.Add(p.Window)}
	}

	if entry.Count >= p.Limit {
		// Rejected requests do not advance the counter.
		return entry, false, nil
	}

	entry.Count++
	s.cache.Add(identity, entry)
	return entry, true, nil
}
