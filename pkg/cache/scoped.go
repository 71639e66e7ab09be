package cache

import (
	"context"
	"time"
)

// Scoped wraps a store and prefixes every key. gitstat scopes the store by
// API host when a non-default base URL is configured, so responses from a
// mirror never mix with api.github.com.
//
//	store = cache.NewScoped(store, "ghe.example.com:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a prefixed view of inner. An empty prefix returns inner.
func NewScoped(inner Cache, prefix string) Cache {
	if prefix == "" {
		return inner
	}
	return &Scoped{inner: inner, prefix: prefix}
}

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Clear clears the wrapped store. Scopes share the underlying storage, so
// this drops other scopes too.
func (s *Scoped) Clear(ctx context.Context) error {
	_, err := Clear(ctx, s.inner)
	return err
}

func (s *Scoped) Close() error { return s.inner.Close() }

var (
	_ Cache   = (*Scoped)(nil)
	_ Clearer = (*Scoped)(nil)
)
