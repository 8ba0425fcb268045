// Package cache memoizes analysis results keyed by dataset fingerprint and
// analysis parameters.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"
)

// Key identifies one analysis: the dataset content plus every parameter
// that changes the result.
type Key struct {
	Fingerprint    string
	N              int
	MinOccurrences int
	StopWords      string
	SortField      string
	Descending     bool
	CountMode      string
}

// String hashes the key fields into a compact cache key.
func (k Key) String() string {
	raw := strings.Join([]string{
		k.Fingerprint,
		strconv.Itoa(k.N),
		strconv.Itoa(k.MinOccurrences),
		k.StopWords,
		k.SortField,
		strconv.FormatBool(k.Descending),
		k.CountMode,
	}, "|")
	return strconv.FormatUint(xxh3.HashStringSeed(raw, 0), 16)
}

// Cache is a typed in-memory cache. A zero ttl keeps entries until Flush.
type Cache[T any] struct {
	c   *gocache.Cache
	ttl time.Duration

	// locks holds one mutex per key so concurrent misses on the same key
	// compute once while different keys proceed in parallel.
	locks sync.Map
}

// New returns an empty cache.
func New[T any](ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	cleanup := time.Minute * 10
	return &Cache[T]{c: gocache.New(ttl, cleanup), ttl: ttl}
}

// Get returns the cached value for key.
func (c *Cache[T]) Get(key Key) (T, bool) {
	var zero T
	v, ok := c.c.Get(key.String())
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Set stores v under key.
func (c *Cache[T]) Set(key Key, v T) {
	c.c.Set(key.String(), v, gocache.DefaultExpiration)
}

// GetOrCompute returns the cached value for key, or runs fn and caches its
// result. computed is true when fn ran. Errors are not cached.
func (c *Cache[T]) GetOrCompute(key Key, fn func() (T, error)) (value T, computed bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, false, nil
	}

	k := key.String()
	mu, _ := c.locks.LoadOrStore(k, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	if v, ok := c.Get(key); ok {
		return v, false, nil
	}

	value, err = fn()
	if err != nil {
		log.Error().Err(err).Str("key", k).Int("n", key.N).Msg("failed to compute value in GetOrCompute")
		return value, true, err
	}
	c.Set(key, value)
	log.Debug().Str("key", k).Int("n", key.N).Msg("cache miss computed")
	return value, true, nil
}

// Len returns the number of live entries.
func (c *Cache[T]) Len() int { return c.c.ItemCount() }

// Flush drops every entry.
func (c *Cache[T]) Flush() { c.c.Flush() }
