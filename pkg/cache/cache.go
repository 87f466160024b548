// Package cache stores rendered conversion graphs between CLI runs.
//
// Rendering a tree through Graphviz is slow compared to resolving it, so
// the graph command and the debug server keep the rendered bytes keyed by
// the DOT source and output format. [FileCache] stores entries below the XDG
// cache directory, [NullCache] disables caching.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/convgraph/pkg/observability"
)

// Cache is a byte-oriented key value store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Observed wraps c so that lookups and writes are reported to the
// registered [observability.CacheHooks] under keyType.
func Observed(c Cache, keyType string) Cache {
	return &observed{Cache: c, keyType: keyType}
}

type observed struct {
	Cache
	keyType string
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, o.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, o.keyType)
		}
	}
	return data, ok, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := o.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, o.keyType, len(data))
	return nil
}
