package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

type entry struct {
	ds      domain.Dataset
	expires time.Time
}

// SnapshotCache is an in-process domain.SnapshotCache.
type SnapshotCache struct {
	mu    sync.RWMutex
	items map[string]entry
	clock func() time.Time
}

// NewSnapshotCache creates an empty cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{items: make(map[string]entry), clock: time.Now}
}

// Set implements domain.SnapshotCache.
func (c *SnapshotCache) Set(_ context.Context, key string, ds domain.Dataset, ttl time.Duration) error {
	e := entry{ds: ds}
	if ttl > 0 {
		e.expires = c.clock().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = e
	c.mu.Unlock()
	return nil
}

// Get implements domain.SnapshotCache.
func (c *SnapshotCache) Get(_ context.Context, key string) (domain.Dataset, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && c.clock().After(e.expires)) {
		return domain.Dataset{}, domain.ErrNotFound
	}
	return e.ds, nil
}

// Invalidate implements domain.SnapshotCache.
func (c *SnapshotCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

var _ domain.SnapshotCache = (*SnapshotCache)(nil)
