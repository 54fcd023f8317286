package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows transaction listings. Zero values mean "any".
type TransactionFilter struct {
	CustomerID *uuid.UUID
	Kind       enum.TransactionKind
	From       *time.Time
	To         *time.Time
}

// ApplyResult reports the state left behind by an applied ledger entry
type ApplyResult struct {
	// CustomerTotalDue is the customer's balance after the entry.
	CustomerTotalDue decimal.Decimal
	// Clamped lists products whose stock would have gone negative and was held at zero.
	Clamped []uuid.UUID
}

// LedgerRepository persists ledger entries together with the balance and
// stock changes they imply.
type LedgerRepository interface {
	// Apply inserts the transaction with its items, moves the customer's
	// total_due by DueAmount and decrements stock for each item, all in one
	// database transaction.
	Apply(ctx context.Context, tx *entity.Transaction, policy enum.StockPolicy) (*ApplyResult, error)
	// OpenAccount creates the customer and applies its opening entry, if
	// any, in one database transaction. Neither is stored when either fails.
	OpenAccount(ctx context.Context, customer *entity.Customer, opening *entity.Transaction) (*ApplyResult, error)
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Transaction, error)
	List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, filter TransactionFilter) ([]entity.Transaction, int64, error)
	ListAll(ctx context.Context, accountID uuid.UUID, filter TransactionFilter) ([]entity.Transaction, error)
	// DueByCustomer returns Σ due_amount per customer id, deleted customers included.
	DueByCustomer(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	// SetTotalDue overwrites customer balances in one database transaction.
	SetTotalDue(ctx context.Context, accountID uuid.UUID, dues map[uuid.UUID]decimal.Decimal) error
}
