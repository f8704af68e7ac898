// Package cache stores rendered signature artifacts.
//
// Rendering is cheap but not free, and the same signature is often requested
// repeatedly (a document viewer refreshing, a PDF generator re-running). The
// pipeline memoises rendered bytes under a key derived from the trace text and
// the stroke configuration, so a hit is byte-identical to a fresh render.
//
// Backends:
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for server deployments
//
// Cache failures are never fatal to callers; a failed Get is a miss.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache never stores anything; every Get is a miss. It stands in for a
// real backend when caching is disabled.
type NullCache struct{}

// NewNullCache returns a cache that discards everything.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
