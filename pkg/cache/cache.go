// Package cache provides response caching for gitstat.
//
// Two layers live here:
//   - [Cache] is a byte store with optional per-entry expiry. [FileCache],
//     [MemoryCache], [RedisCache] and [NullCache] implement it.
//   - [TTLCache] sits on top of a store and decides freshness itself. Every
//     resource occupies two entries: the JSON payload under its key and the
//     write time (epoch milliseconds) under [TimeKey] of that key.
//
// # Usage
//
//	store, _ := cache.NewFileCache(dir)
//	ttl := cache.NewTTL(store)
//	stats, cached, err := cache.GetOrFetch(ctx, ttl, cache.Key(cache.KindStats, login),
//	    15*time.Minute, func(ctx context.Context) (*Stats, error) {
//	        return compute(ctx, login)
//	    })
//
// The cache is ephemeral: losing it only costs extra requests.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value byte store.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	// Expired entries are reported as absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero keeps the entry until it is
	// overwritten or deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}

// Clearer is implemented by stores that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear empties c if it supports [Clearer] and reports whether it did.
func Clear(ctx context.Context, c Cache) (bool, error) {
	cl, ok := c.(Clearer)
	if !ok {
		return false, nil
	}
	return true, cl.Clear(ctx)
}
