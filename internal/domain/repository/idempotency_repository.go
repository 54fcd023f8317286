package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses keyed per account
type IdempotencyRepository interface {
	// GetByKey returns a live (unexpired) key or nil.
	GetByKey(ctx context.Context, accountID uuid.UUID, key string) (*entity.IdempotencyKey, error)
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired purges keys that expired before the given time and reports how many.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
