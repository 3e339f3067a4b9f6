package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// LockManager is a process-local domain.LockManager. Expired locks are
// reclaimed lazily on the next Acquire.
type LockManager struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

// NewLockManager creates a LockManager.
func NewLockManager() *LockManager {
	return &LockManager{held: make(map[string]time.Time), clock: time.Now}
}

// Acquire implements domain.LockManager.
func (l *LockManager) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if exp, ok := l.held[key]; ok && now.Before(exp) {
		return nil, domain.ErrLockHeld
	}
	exp := now.Add(ttl)
	l.held[key] = exp

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.held[key].Equal(exp) {
				delete(l.held, key)
			}
		})
	}, nil
}

var _ domain.LockManager = (*LockManager)(nil)
