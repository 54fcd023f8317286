package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker holds locks in process memory. Expired locks can be taken over.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]localHold
	now   func() time.Time
	token uint64
}

type localHold struct {
	token   uint64
	expires time.Time
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localHold), now: time.Now}
}

func (l *LocalLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, ok := l.held[key]; ok && now.Before(h.expires) {
		return nil, ErrNotObtained
	}
	l.token++
	l.held[key] = localHold{token: l.token, expires: now.Add(ttl)}
	return &localLock{locker: l, key: key, token: l.token}, nil
}

type localLock struct {
	locker *LocalLocker
	key    string
	token  uint64
}

func (l *localLock) Release(ctx context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	if h, ok := l.locker.held[l.key]; ok && h.token == l.token {
		delete(l.locker.held, l.key)
	}
	return nil
}
