package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/pkg/pagination"
)

// PersonalRepository defines the interface for personal income and expense entries
type PersonalRepository interface {
	Create(ctx context.Context, entry *entity.PersonalTransaction) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.PersonalTransaction, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, entryType enum.EntryType) ([]entity.PersonalTransaction, int64, error)
	ListAll(ctx context.Context, accountID uuid.UUID) ([]entity.PersonalTransaction, error)
}
