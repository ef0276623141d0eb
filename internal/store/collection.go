// Package store keeps the fetched backend collections in memory and decides
// which response wins when fetches overlap.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/cache"
)

// FetchFunc loads the full collection from the backend.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Options configure a collection.
type Options struct {
	Cache  cache.Cache
	Logger *slog.Logger
	TTL    time.Duration
}

// Option mutates Options.
type Option func(*Options)

// WithCache keeps a snapshot of every successful fetch in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(o *Options) {
		o.Cache = c
		o.TTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func buildOptions(opts []Option) Options {
	o := Options{Cache: cache.Nop{}, Logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Cache == nil {
		o.Cache = cache.Nop{}
	}
	return o
}

// Collection is a state container for one backend list.
//
// Items reports (nil, false) until the first load, so callers can tell
// "loading" apart from "no data". Every Revalidate and Set bumps a generation
// counter; a fetch whose generation is no longer current when it completes is
// discarded, so a slow stale response never overwrites a newer one.
type Collection[T any] struct {
	fetch  FetchFunc[T]
	err    error
	opts   Options
	key    string
	items  []T
	gen    uint64
	loaded bool
	stale  bool
	mu     sync.RWMutex
}

// NewCollection creates an empty collection cached under key.
func NewCollection[T any](key string, fetch FetchFunc[T], opts ...Option) *Collection[T] {
	return &Collection[T]{
		key:   key,
		fetch: fetch,
		opts:  buildOptions(opts),
	}
}

// Key is the cache key of the collection.
func (c *Collection[T]) Key() string {
	return c.key
}

// Items returns a copy of the current items and whether anything has loaded.
func (c *Collection[T]) Items() ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out, true
}

// Stale reports whether the items come from the snapshot cache rather than a fetch.
func (c *Collection[T]) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

// Err returns the error of the last fetch, nil after a success.
func (c *Collection[T]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Warm fills an unloaded collection from the snapshot cache. It reports whether it did.
func (c *Collection[T]) Warm(ctx context.Context) bool {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return false
	}

	var items []T
	if err := cache.GetJSON(ctx, c.opts.Cache, c.key, &items); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.opts.Logger.Warn("Failed to read snapshot", "key", c.key, "error", err)
		}
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return false
	}
	c.items = items
	c.loaded = true
	c.stale = true
	return true
}

// Revalidate fetches the collection again. A response that was superseded while
// in flight is dropped and Revalidate returns nil.
func (c *Collection[T]) Revalidate(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	items, err := c.fetch(ctx)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.opts.Logger.Debug("Dropped superseded response", "key", c.key, "generation", gen)
		return nil
	}
	if err != nil {
		c.err = err
		c.mu.Unlock()
		return err
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.loaded = true
	c.stale = false
	c.err = nil
	c.mu.Unlock()

	c.snapshot(ctx, items)
	return nil
}

// Set replaces the items and supersedes any fetch in flight.
func (c *Collection[T]) Set(ctx context.Context, items []T) {
	c.mu.Lock()
	c.gen++
	c.items = append([]T{}, items...)
	c.loaded = true
	c.stale = false
	c.err = nil
	snapshot := c.items
	c.mu.Unlock()

	c.snapshot(ctx, snapshot)
}

// Patch replaces the first item matching match with fn's result. It reports whether one matched.
func (c *Collection[T]) Patch(ctx context.Context, match func(T) bool, fn func(T) T) bool {
	c.mu.Lock()
	idx := -1
	for i, item := range c.items {
		if match(item) {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	next := append([]T{}, c.items...)
	next[idx] = fn(next[idx])
	c.items = next
	c.gen++
	c.mu.Unlock()

	c.snapshot(ctx, next)
	return true
}

// Find returns the first item matching match.
func (c *Collection[T]) Find(match func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Reset forgets the items and the cached snapshot.
func (c *Collection[T]) Reset(ctx context.Context) {
	c.mu.Lock()
	c.gen++
	c.items = nil
	c.loaded = false
	c.stale = false
	c.err = nil
	c.mu.Unlock()

	if err := c.opts.Cache.Delete(ctx, c.key); err != nil {
		c.opts.Logger.Warn("Failed to drop snapshot", "key", c.key, "error", err)
	}
}

func (c *Collection[T]) snapshot(ctx context.Context, items []T) {
	if err := cache.SetJSON(ctx, c.opts.Cache, c.key, items, c.opts.TTL); err != nil {
		c.opts.Logger.Warn("Failed to write snapshot", "key", c.key, "error", err)
	}
}
