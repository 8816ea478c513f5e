package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// memoryEntry holds an encoded value with its expiry deadline.
// A zero deadline means the entry does not expire.
type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is an in-process Store with per-entry TTL. Used in tests and
// single-node deployments. Expired entries are cleaned up lazily on Get.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	closed  bool
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.entries[key] = &memoryEntry{data: data, expiresAt: expiresAt}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	entry, ok := s.entries[key]
	closed := s.closed
	s.mu.RUnlock()

	if closed {
		return false, ErrClosed
	}
	if !ok {
		return false, nil
	}

	if entry.expired(s.now()) {
		// Expired — clean up lazily. Re-check under write lock: a concurrent
		// Set may have replaced the entry with a fresh one in between.
		s.mu.Lock()
		if current, ok := s.entries[key]; ok && current.expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("decode value for %q: %w", key, err)
	}
	return true, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	entry, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	delete(s.entries, key)
	return !entry.expired(s.now()), nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Health implements Store.
func (s *MemoryStore) Health(ctx context.Context) *Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := &Health{Backend: "memory", Healthy: !s.closed, Entries: len(s.entries)}
	if s.closed {
		h.Error = ErrClosed.Error()
	}
	return h
}

// Close implements Store. Entries are discarded.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = make(map[string]*memoryEntry)
	return nil
}
