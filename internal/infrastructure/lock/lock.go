// Package lock provides short-lived per-key mutual exclusion across requests.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotObtained is returned when the key is already held
var ErrNotObtained = errors.New("lock not obtained")

// Lock is a held lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtains locks without waiting: a held key fails fast with ErrNotObtained
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
