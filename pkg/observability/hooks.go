// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about converter resolution, cache operations, and debug
// server requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetResolutionHooks(&myResolutionHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	c := registry.Find(in, out)
//	observability.Resolution().OnFind(in.String(), out.String(), c != nil, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Resolution Hooks
// =============================================================================

// ResolutionHooks receives events from a conversion registry. Resolution is
// synchronous and has no context, so these hooks take none.
type ResolutionHooks interface {
	// OnFind records a converter lookup that missed the pair cache.
	OnFind(input, output string, found bool, duration time.Duration)

	// OnRegister records a converter registration. err is non-nil when the
	// converter was rejected.
	OnRegister(input, output string, err error)

	// OnReset records a conversion tree being discarded.
	OnReset(output string, nodes int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the debug HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a request that failed with an error.
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResolutionHooks is a no-op implementation of ResolutionHooks.
type NoopResolutionHooks struct{}

func (NoopResolutionHooks) OnFind(string, string, bool, time.Duration) {}
func (NoopResolutionHooks) OnRegister(string, string, error)           {}
func (NoopResolutionHooks) OnReset(string, int)                        {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	resolutionHooks ResolutionHooks = NoopResolutionHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	httpHooks       HTTPHooks       = NoopHTTPHooks{}
	hooksMu         sync.RWMutex
)

// SetResolutionHooks registers custom resolution hooks.
// This should be called once at application startup before any registry is used.
func SetResolutionHooks(h ResolutionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolutionHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Resolution returns the registered resolution hooks.
func Resolution() ResolutionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolutionHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	resolutionHooks = NoopResolutionHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
