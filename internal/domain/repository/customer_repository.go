package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CustomerRepository defines the interface for customer data operations.
// Update never writes total_due; only LedgerRepository moves balances.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Customer, error)
	// GetByIDUnscoped also returns soft-deleted customers, for history and statements.
	GetByIDUnscoped(ctx context.Context, accountID, id uuid.UUID) (*entity.Customer, error)
	GetByName(ctx context.Context, accountID uuid.UUID, name string) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
	ListAll(ctx context.Context, accountID uuid.UUID) ([]entity.Customer, error)
	Count(ctx context.Context, accountID uuid.UUID) (int64, error)
	SumTotalDue(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}
