// Package cache defines the best-effort cache abstraction used by the
// acquisition pipeline. Backends never surface errors: a failed read is
// a miss, a failed write is dropped. Cache I/O must never block the
// critical path with a user-facing failure.
package cache

import (
	"context"
	"time"
)

// Store is a TTL'd key-value cache tier.
type Store interface {
	// Get returns the cached value and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores val under key for ttl. A non-positive ttl stores
	// nothing.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)

	// Invalidate removes key.
	Invalidate(ctx context.Context, key string)
}

// Nop is a Store that holds nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool)                 { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration)         {}
func (Nop) Invalidate(context.Context, string)                         {}
