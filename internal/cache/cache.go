// SPDX-License-Identifier: MPL-2.0

// Package cache is the in-memory key/value service exposed to components.
// Entries expire after the configured TTL; Remember memoizes computed values.
package cache

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/corekit/corekit/internal/logging"

	"github.com/charmbracelet/log"
	gocache "github.com/patrickmn/go-cache"
)

// NoExpiration keeps an entry until it is removed.
const NoExpiration = gocache.NoExpiration

type (
	// Cache wraps go-cache with typed helpers and debug logging.
	Cache struct {
		store  *gocache.Cache
		logger *log.Logger
	}

	// Option configures a Cache.
	Option func(*Cache)
)

// WithLogger sets the logger for hit/miss tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithInitial seeds the cache with entries that never expire.
func WithInitial(entries map[string]any) Option {
	return func(c *Cache) {
		for k, v := range entries {
			c.store.Set(k, v, NoExpiration)
		}
	}
}

// New returns a cache whose entries expire after ttl, purged every cleanup.
func New(ttl, cleanup time.Duration, opts ...Option) *Cache {
	c := &Cache{
		store:  gocache.New(ttl, cleanup),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value under key.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.store.Get(key)
	c.logger.Debug("cache lookup", "key", key, "hit", ok)
	return v, ok
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.SetDefault(key, value)
}

// SetTTL stores value under key for ttl.
func (c *Cache) SetTTL(key string, value any, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// Has reports whether key holds an unexpired entry.
func (c *Cache) Has(key string) bool {
	_, ok := c.store.Get(key)
	return ok
}

// Remove deletes key. Removing a missing key is a no-op.
func (c *Cache) Remove(key string) {
	c.store.Delete(key)
}

// Keys returns the unexpired keys, sorted.
func (c *Cache) Keys() []string {
	items := c.store.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len counts entries, including expired ones not yet purged.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Flush removes every entry.
func (c *Cache) Flush() {
	c.store.Flush()
}

// Remember returns the cached value for key, or computes it with fn and
// stores the result. A failing fn stores nothing.
func (c *Cache) Remember(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := fn(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing %q: %w", key, err)
	}
	c.Set(key, v)
	return v, nil
}

// RememberValue stores value under key unless an entry exists, and returns
// whichever is cached.
func (c *Cache) RememberValue(key string, value any) any {
	if err := c.store.Add(key, value, gocache.DefaultExpiration); err != nil {
		v, _ := c.store.Get(key)
		return v
	}
	return value
}

// Lookup returns the value under key as a T. A value of another type counts
// as a miss.
func Lookup[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		c.logger.Error("wrong type in cache", "key", key, "type", fmt.Sprintf("%T", v))
		return zero, false
	}
	return t, true
}
