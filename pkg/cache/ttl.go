package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/gitstat/pkg/clock"
	gserrors "github.com/matzehuels/gitstat/pkg/errors"
	"github.com/matzehuels/gitstat/pkg/observability"
)

// TTLCache judges freshness from a write-time entry stored next to each
// payload. Store-level expiry is not used: entries stay until overwritten,
// invalidated or cleared.
type TTLCache struct {
	store  Cache
	clock  clock.Clock
	logger *log.Logger
	group  singleflight.Group
}

// TTLOption configures a TTLCache.
type TTLOption func(*TTLCache)

// WithClock sets the time source used for write stamps and freshness checks.
func WithClock(c clock.Clock) TTLOption {
	return func(t *TTLCache) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithLogger sets the logger for store failures, which are never fatal.
func WithLogger(l *log.Logger) TTLOption {
	return func(t *TTLCache) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTTL creates a TTLCache over store. A nil store behaves as [NullCache].
func NewTTL(store Cache, opts ...TTLOption) *TTLCache {
	if store == nil {
		store = NewNullCache()
	}
	t := &TTLCache{
		store:  store,
		clock:  clock.Real(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Store returns the underlying store.
func (c *TTLCache) Store() Cache { return c.store }

// Invalidate removes the payload and write-time entries of key.
func (c *TTLCache) Invalidate(ctx context.Context, key string) error {
	return errors.Join(
		c.store.Delete(ctx, key),
		c.store.Delete(ctx, TimeKey(key)),
	)
}

// GetOrFetch returns the value cached under key when it was written less than
// ttl ago, without calling fetch. Otherwise fetch runs and, on success, its
// result is stored (payload first, then the write time) and returned. A failed
// fetch propagates unchanged and leaves the cache untouched.
//
// cached reports whether the value came from the store. Concurrent callers
// missing on the same key share one fetch. The shared fetch is detached from
// any single caller's cancellation; a caller whose own context ends stops
// waiting and gets an error matching errors.ErrAborted.
func GetOrFetch[T any](ctx context.Context, c *TTLCache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (value T, cached bool, err error) {
	hooks := observability.Cache()
	kt := keyType(key)

	if v, ok := lookup[T](ctx, c, key, ttl); ok {
		hooks.OnCacheHit(ctx, kt)
		return v, true, nil
	}
	hooks.OnCacheMiss(ctx, kt)

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		c.put(shared, key, v)
		return v, nil
	})

	var res any
	select {
	case r := <-ch:
		res, err = r.Val, r.Err
	case <-ctx.Done():
		var zero T
		return zero, false, fmt.Errorf("%w: %w", gserrors.ErrAborted, ctx.Err())
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	v, ok := res.(T)
	if !ok {
		// another caller shared the key with a different type
		v, err := fetch(ctx)
		if err != nil {
			var zero T
			return zero, false, err
		}
		return v, false, nil
	}
	return v, false, nil
}

func lookup[T any](ctx context.Context, c *TTLCache, key string, ttl time.Duration) (T, bool) {
	var zero T

	stamp, ok, err := c.store.Get(ctx, TimeKey(key))
	if err != nil {
		c.logger.Debug("cache read failed", "key", key, "err", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}
	ms, err := strconv.ParseInt(string(stamp), 10, 64)
	if err != nil {
		return zero, false
	}
	if c.clock.Now().Sub(time.UnixMilli(ms)) >= ttl {
		return zero, false
	}

	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Debug("cache read failed", "key", key, "err", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Debug("discarding corrupt cache entry", "key", key, "err", err)
		return zero, false
	}
	return v, true
}

func (c *TTLCache) put(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "err", err)
		return
	}
	if err := c.store.Set(ctx, key, data, 0); err != nil {
		c.logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	stamp := strconv.FormatInt(c.clock.Now().UnixMilli(), 10)
	if err := c.store.Set(ctx, TimeKey(key), []byte(stamp), 0); err != nil {
		c.logger.Warn("cache write failed", "key", TimeKey(key), "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
}
