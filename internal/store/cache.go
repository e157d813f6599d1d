package store

import (
	"context"
	"time"

	"github.com/skillprep/assess/internal/logger"
)

// DurableCache exposes the cache_entries table through the cache.Store
// interface as the long-TTL tier. All operations are best-effort; I/O
// failures degrade to misses and are logged, never returned.
type DurableCache struct {
	store *Store
	log   logger.Logger
}

// DurableCache returns the durable cache tier backed by this store.
func (s *Store) DurableCache(log logger.Logger) *DurableCache {
	return &DurableCache{store: s, log: log.Named("durablecache")}
}

func (c *DurableCache) Get(ctx context.Context, key string) ([]byte, bool) {
	row := c.store.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM cache_entries WHERE key = ?`, key,
	)

	var payload []byte
	var expiresAt time.Time
	if err := row.Scan(&payload, &expiresAt); err != nil {
		return nil, false
	}

	if time.Now().After(expiresAt) {
		// Expired entries are discarded and treated as a miss.
		c.Invalidate(ctx, key)
		return nil, false
	}
	return payload, true
}

func (c *DurableCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	_, err := c.store.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, payload, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at`,
		key, val, time.Now().Add(ttl).UTC(),
	)
	if err != nil {
		c.log.Warn(ctx, "cache write failed", logger.String("key", key), logger.Error(err))
	}
}

func (c *DurableCache) Invalidate(ctx context.Context, key string) {
	if _, err := c.store.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE key = ?`, key,
	); err != nil {
		c.log.Warn(ctx, "cache delete failed", logger.String("key", key), logger.Error(err))
	}
}
