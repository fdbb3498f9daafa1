package memory

import (
	"context"
	"sync"
	"time"
)

// Locker lock en proceso con expiración, equivalente local del lock Redis.
type Locker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	nowFn func() time.Time
}

// NewLocker crea el locker; nowFn nil usa time.Now.
func NewLocker(nowFn func() time.Time) *Locker {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Locker{held: make(map[string]time.Time), nowFn: nowFn}
}

func (l *Locker) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.nowFn()
	if exp, ok := l.held[key]; ok && exp.After(now) {
		return nil, false, nil
	}
	l.held[key] = now.Add(ttl)
	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}
	return release, true, nil
}
