package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStoreReadYourWrites(t *testing.T) {
	s := NewMemoryStore()
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", payload{Name: "a", Count: 3}, 0))

	var got payload
	ok, err := s.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload{Name: "a", Count: 3}, got)

	ok, err = s.Get(ctx, "absent", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	s := NewMemoryStore()
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	require.NoError(t, s.Set(ctx, "k", payload{Name: "a"}, time.Minute))

	var got payload
	ok, err := s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok, "not yet expired")

	current = current.Add(2 * time.Minute)
	ok, err = s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok, "expired entries read as absent")

	assert.Equal(t, 0, s.Health(ctx).Entries, "expired entry cleaned up lazily")
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", 1, 0))

	ok, err := s.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreClosed(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Set(ctx, "k", 1, 0), ErrClosed)
	_, err := s.Get(ctx, "k", new(int))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Ping(ctx), ErrClosed)
	assert.False(t, s.Health(ctx).Healthy)
}

func TestTaskAndSharedKeys(t *testing.T) {
	assert.Equal(t, "job:j1:task:literature", TaskKey("j1", "literature"))
	assert.Equal(t, "job:j1:shared:notes", SharedKey("j1", "notes"))
}

func TestQueryHashCanonicalization(t *testing.T) {
	a := QueryHash("q", map[string]string{"year": "2020", "venue": "x"}, "openalex")
	b := QueryHash("q", map[string]string{"venue": "x", "year": "2020"}, "openalex")
	assert.Equal(t, a, b, "filter order does not matter")

	c := QueryHash("q", map[string]string{"year": "2020", "venue": "x"}, "crossref")
	assert.NotEqual(t, a, c, "source is part of the key")
	assert.Len(t, a, 64)
}

func TestCacheHelpersUsePrefix(t *testing.T) {
	s := NewMemoryStore()
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	require.NoError(t, CacheSet(ctx, s, "h", payload{Name: "cached"}, time.Hour))

	var got payload
	ok, err := CacheGet(ctx, s, "h", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cached", got.Name)

	ok, err = s.Get(ctx, "h", &got)
	require.NoError(t, err)
	assert.False(t, ok, "unprefixed key does not alias the cache entry")
}
