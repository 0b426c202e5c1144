package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

// scanBatch bounds both the SCAN page hint and the number of keys per DEL.
const scanBatch = 200

// CacheRepository keeps JSON encoded candidate slot lists in Redis. Without a client every read
// misses and every write is dropped.
type CacheRepository struct {
	client redis.UniversalClient
}

func NewCacheRepository(client redis.UniversalClient) *CacheRepository {
	return &CacheRepository{client: client}
}

// Get decodes the value at key into dest, returning ErrCacheMiss when it is absent.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return appErrors.ErrCacheMiss
	case err != nil:
		return fmt.Errorf("cache get %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// A payload of an older shape is as good as absent.
		_ = r.client.Del(ctx, key).Err()
		return fmt.Errorf("cache decode %q: %w", key, err)
	}
	return nil
}

// Set writes value as JSON with a ttl.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}
	return wrapRedis("cache set", key, r.client.Set(ctx, key, payload, ttl).Err())
}

// DeleteByPattern removes every key matching the glob pattern. The scan completes before anything
// is deleted, since deleting under an open cursor may skip keys; deletes then go out in batches.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}
	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return wrapRedis("cache scan", pattern, err)
	}

	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := r.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return wrapRedis("cache delete", pattern, err)
		}
	}
	return nil
}

func wrapRedis(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %q: %w", op, key, err)
}
