package domain

import (
	"context"
	"time"
)

// SnapshotCache stores serialized datasets keyed by source name.
type SnapshotCache interface {
	Set(ctx context.Context, key string, ds Dataset, ttl time.Duration) error
	Get(ctx context.Context, key string) (Dataset, error)
	Invalidate(ctx context.Context, key string) error
}

// RateLimiter provides request rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager provides mutual exclusion across processes.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// SignalBus provides fire-and-forget pub/sub between components.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// EventStream is an append-only log that can be replayed from an ID.
type EventStream interface {
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream, lastID string, count int) ([]StreamMessage, error)
}

// StreamMessage is one entry read back from a durable stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}
