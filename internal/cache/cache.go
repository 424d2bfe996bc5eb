// Package cache provides a TTL cache with single-flight loading over a
// pluggable key/value store.
package cache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry is a cached value and the instant it stops being fresh.
type Entry struct {
	Value     string
	ExpiresAt time.Time
}

// Store is the persistence interface behind a TTL cache.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	Close() error
}

// LoadFunc produces a fresh value on a cache miss.
type LoadFunc func(ctx context.Context) (string, error)

// TTL memoizes successful loads for a fixed duration.
// Concurrent misses on the same key share one load.
type TTL struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	log   *slog.Logger
	group singleflight.Group
}

// Option configures a TTL cache.
type Option func(*TTL)

// WithClock overrides the wall clock (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(c *TTL) {
		c.now = now
	}
}

// NewTTL creates a TTL cache over store.
func NewTTL(store Store, ttl time.Duration, log *slog.Logger, opts ...Option) *TTL {
	c := &TTL{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		log:   log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrLoad returns the fresh cached value for key, or calls load once for
// all concurrent callers and caches its result. Failed loads are not cached.
// The shared load does not inherit the caller's cancellation; a caller whose
// ctx ends stops waiting without failing the others.
func (c *TTL) GetOrLoad(ctx context.Context, key string, load LoadFunc) (string, error) {
	if v, ok := c.lookup(ctx, key); ok {
		return v, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// A caller that just finished may have filled the entry.
		if v, ok := c.lookup(loadCtx, key); ok {
			return v, nil
		}
		v, err := load(loadCtx)
		if err != nil {
			return "", err
		}
		e := Entry{Value: v, ExpiresAt: c.now().Add(c.ttl)}
		if err := c.store.Set(loadCtx, key, e); err != nil {
			c.log.Warn("cache set", "key", key, "error", err)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.log.Debug("cache load shared", "key", key)
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *TTL) lookup(ctx context.Context, key string) (string, bool) {
	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache get", "key", key, "error", err)
		return "", false
	}
	if !ok || !c.now().Before(e.ExpiresAt) {
		return "", false
	}
	return e.Value, true
}
