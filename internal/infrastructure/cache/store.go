package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Store is the low-level cache abstraction shared by the Redis-backed and
// in-memory implementations. Values are opaque byte slices; serialization is
// handled by GetOrSet.
type Store interface {
	// Get returns the raw value for key, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL. A zero TTL means the
	// entry does not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes the given keys. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error

	// DelByPrefix removes every key starting with prefix.
	DelByPrefix(ctx context.Context, prefix string) error

	// Close releases any resources held by the store.
	Close() error
}

// GetOrSet implements the cache-aside pattern: return the cached value for
// key if present, otherwise invoke compute, cache its result under key with
// ttl, and return it.
//
// Cache failures never fail the read path. A broken Get falls through to
// compute; a broken Set logs and returns the computed value anyway. Only an
// error from compute itself is propagated to the caller.
func GetOrSet[T any](ctx context.Context, store Store, key string, ttl time.Duration, logger *zap.Logger, compute func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	raw, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed, falling back to source",
			zap.String("key", key),
			zap.Error(err))
	} else if raw != nil {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		// A corrupt entry is treated as a miss and overwritten below.
		logger.Warn("cache entry is not valid JSON, recomputing",
			zap.String("key", key))
	}

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		logger.Warn("failed to encode value for caching",
			zap.String("key", key),
			zap.Error(err))
		return value, nil
	}
	if err := store.Set(ctx, key, encoded, ttl); err != nil {
		logger.Warn("cache write failed",
			zap.String("key", key),
			zap.Error(err))
	}
	return value, nil
}
