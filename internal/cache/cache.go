// Package cache provides a TTL cache for upstream lookups.
//
// Geocoding results and catalog search responses are cached for a
// configurable window (30 minutes by default) so repeated queries for
// the same city do not hit the paid upstream APIs.
package cache

import "context"

// Store is a byte-oriented TTL cache. Values expire after the store's
// configured TTL; Get never returns expired entries.
type Store interface {
	// Get returns the cached value for key, or ok=false on miss.
	Get(ctx context.Context, key string) (value []byte, ok bool)

	// Set stores value under key with the store's TTL.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases background resources.
	Close() error
}

// Nop is a Store that caches nothing. Used when cache.backend is "none".
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Nop) Set(context.Context, string, []byte) error  { return nil }
func (Nop) Close() error                               { return nil }
