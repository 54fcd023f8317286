package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/pkg/pagination"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	Search   string
	Category string
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Product, error)
	// GetByIDs fetches several products in one query. Missing ids are simply absent.
	GetByIDs(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error)
	// Update writes only the named columns, so a stock count read earlier is
	// never written back over a concurrent sale.
	Update(ctx context.Context, product *entity.Product, columns []string) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, filter ProductFilter) ([]entity.Product, int64, error)
	ListAll(ctx context.Context, accountID uuid.UUID) ([]entity.Product, error)
	LowStock(ctx context.Context, accountID uuid.UUID, threshold int) ([]entity.Product, error)
	Count(ctx context.Context, accountID uuid.UUID) (int64, error)
}
