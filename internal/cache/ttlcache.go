// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides the TTL-bounded, single-flight read-through
// caches described in spec §4.2/§3 ("Cache Entry"). The shape follows
// the teacher's internal/cache/lru.go (mutex-protected, O(1) reads) but
// drops LRU eviction: these caches hold one logical value each (the
// channel list, the program guide, the job list, the VOD catalog) rather
// than a bounded set of keyed entries, so plain TTL expiry is all the
// spec asks for.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache holds one value of type T, refreshed at most once concurrently.
type Cache[T any] struct {
	mu         sync.Mutex
	value      T
	fetchedAt  time.Time
	ttl        time.Duration
	hasValue   bool
	refreshing bool
	done       chan struct{}
	lastErr    error
}

func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{ttl: ttl}
}

// Get returns the cached value if it is fresh; otherwise it refreshes via
// fetch, holding the cache's single-flight lock for the duration of the
// call. If a refresh is already in flight and the cache is non-empty, the
// prior value is served immediately; if the cache is empty, the caller
// waits for the in-flight refresh to complete.
func (c *Cache[T]) Get(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	if c.hasValue && time.Since(c.fetchedAt) < c.ttl {
		v := c.value
		c.mu.Unlock()
		return v, nil
	}
	if c.refreshing {
		if c.hasValue {
			v := c.value
			c.mu.Unlock()
			return v, nil
		}
		wait := c.done
		c.mu.Unlock()
		<-wait
		c.mu.Lock()
		v, err := c.value, c.lastErr
		c.mu.Unlock()
		return v, err
	}

	c.refreshing = true
	c.done = make(chan struct{})
	c.mu.Unlock()

	v, err := fetch(ctx)

	c.mu.Lock()
	c.refreshing = false
	c.lastErr = err
	if err == nil {
		c.value = v
		c.fetchedAt = time.Now()
		c.hasValue = true
	}
	close(c.done)
	c.mu.Unlock()

	if err != nil && c.hasValue {
		// Serve the stale value rather than propagate a transient fetch
		// error, so a blip in DVR connectivity doesn't blank the cache.
		c.mu.Lock()
		v = c.value
		c.mu.Unlock()
		return v, nil
	}
	return v, err
}

// Invalidate forces the next Get to refresh.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	c.hasValue = false
	c.mu.Unlock()
}
