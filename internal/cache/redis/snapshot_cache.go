package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// SnapshotCache implements domain.SnapshotCache with one JSON string per key.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by c.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

func snapshotKey(key string) string {
	return "dataset:" + key
}

// Set stores ds under key. A zero ttl keeps the entry until invalidated.
func (s *SnapshotCache) Set(ctx context.Context, key string, ds domain.Dataset, ttl time.Duration) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("redis: marshal dataset %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, snapshotKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set dataset %s: %w", key, err)
	}
	return nil
}

// Get returns the cached dataset or domain.ErrNotFound.
func (s *SnapshotCache) Get(ctx context.Context, key string) (domain.Dataset, error) {
	data, err := s.rdb.Get(ctx, snapshotKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Dataset{}, domain.ErrNotFound
		}
		return domain.Dataset{}, fmt.Errorf("redis: get dataset %s: %w", key, err)
	}
	var ds domain.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("redis: unmarshal dataset %s: %w", key, err)
	}
	return ds, nil
}

// Invalidate removes the cached entry.
func (s *SnapshotCache) Invalidate(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, snapshotKey(key)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate dataset %s: %w", key, err)
	}
	return nil
}

var _ domain.SnapshotCache = (*SnapshotCache)(nil)
