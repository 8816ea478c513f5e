// Package store provides the keyed blob store shared by workers of a job:
// authoritative task outputs, agent scratch data, and connector caches.
// Values are JSON-encoded; every entry carries its own TTL.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store is the keyed blob store contract. Reads after writes by the same
// caller observe the write; no cross-process transactional guarantees.
type Store interface {
	// Set writes the JSON encoding of value under key with the given TTL.
	// A non-positive TTL means the entry does not expire.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Get reads the value under key into dest. Returns (false, nil) when
	// the key is absent or expired.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Delete removes the key. Returns (false, nil) when it was absent.
	Delete(ctx context.Context, key string) (bool, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Health reports backend status for the health endpoint.
	Health(ctx context.Context) *Health

	// Close releases backend connections.
	Close() error
}

// Health describes a store backend's status.
type Health struct {
	Backend string `json:"backend"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
	Entries int    `json:"entries,omitempty"`
}

// CacheSet writes a cache entry under the cache: prefix.
func CacheSet(ctx context.Context, s Store, key string, value any, ttl time.Duration) error {
	return s.Set(ctx, cachePrefix+key, value, ttl)
}

// CacheGet reads a cache entry written by CacheSet.
func CacheGet(ctx context.Context, s Store, key string, dest any) (bool, error) {
	return s.Get(ctx, cachePrefix+key, dest)
}
