package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/internal/domain/ledger"
	domainRepo "github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) domainRepo.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Apply writes the entry, the balance move and the stock moves in one
// database transaction. Balance and stock use server-side increments so
// concurrent entries for the same customer or product never lose an update.
func (r *ledgerRepository) Apply(ctx context.Context, tx *entity.Transaction, policy enum.StockPolicy) (*domainRepo.ApplyResult, error) {
	result := &domainRepo.ApplyResult{}
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return applyEntry(db, tx, policy, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// OpenAccount inserts the customer and, when given, its opening entry in
// one database transaction.
func (r *ledgerRepository) OpenAccount(ctx context.Context, customer *entity.Customer, opening *entity.Transaction) (*domainRepo.ApplyResult, error) {
	result := &domainRepo.ApplyResult{CustomerTotalDue: customer.TotalDue}
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Create(customer).Error; err != nil {
			return err
		}
		if opening == nil {
			return nil
		}
		opening.CustomerID = customer.ID
		return applyEntry(db, opening, enum.StockPolicyReject, result)
	})
	if err != nil {
		return nil, err
	}
	customer.TotalDue = result.CustomerTotalDue
	return result, nil
}

func applyEntry(db *gorm.DB, tx *entity.Transaction, policy enum.StockPolicy, result *domainRepo.ApplyResult) error {
	if err := db.Create(tx).Error; err != nil {
		return err
	}

	var customer entity.Customer
	res := db.Model(&customer).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "total_due"}}}).
		Scopes(AccountScope(tx.UserID)).
		Where("id = ?", tx.CustomerID).
		Update("total_due", gorm.Expr("total_due + ?", tx.DueAmount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ledger.ErrCustomerNotFound
	}
	result.CustomerTotalDue = customer.TotalDue

	for _, move := range ledger.StockMoves(tx.Items) {
		clamped, err := decrementStock(db, tx.UserID, move.ProductID, move.Quantity, policy)
		if err != nil {
			return err
		}
		if clamped {
			result.Clamped = append(result.Clamped, move.ProductID)
		}
	}
	return nil
}

// decrementStock takes n units off a product. It first tries the exact
// decrement; a shortfall is either clamped to zero or rejected.
func decrementStock(db *gorm.DB, accountID, productID uuid.UUID, n int, policy enum.StockPolicy) (bool, error) {
	res := db.Model(&entity.Product{}).
		Scopes(AccountScope(accountID)).
		Where("id = ? AND quantity >= ?", productID, n).
		Update("quantity", gorm.Expr("quantity - ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return false, nil
	}

	if policy == enum.StockPolicyReject {
		var exists int64
		if err := db.Model(&entity.Product{}).Scopes(AccountScope(accountID)).
			Where("id = ?", productID).Count(&exists).Error; err != nil {
			return false, err
		}
		if exists == 0 {
			return false, ledger.ErrProductNotFound
		}
		return false, ledger.ErrInsufficientStock
	}

	res = db.Model(&entity.Product{}).
		Scopes(AccountScope(accountID)).
		Where("id = ?", productID).
		Update("quantity", gorm.Expr("GREATEST(quantity - ?, 0)", n))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected != 1 {
		return false, ledger.ErrProductNotFound
	}
	return true, nil
}

func (r *ledgerRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := r.db.WithContext(ctx).Scopes(AccountScope(accountID)).
		Preload("Items").
		First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tx, err
}

func (r *ledgerRepository) filtered(ctx context.Context, accountID uuid.UUID, filter domainRepo.TransactionFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.Transaction{}).Scopes(AccountScope(accountID))
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date < ?", *filter.To)
	}
	return query
}

func (r *ledgerRepository) List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, filter domainRepo.TransactionFilter) ([]entity.Transaction, int64, error) {
	var txs []entity.Transaction
	var total int64

	query := r.filtered(ctx, accountID, filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Preload("Items").
		Offset(params.Offset()).Limit(params.PerPage).
		Order("date DESC, created_at DESC").
		Find(&txs).Error

	return txs, total, err
}

func (r *ledgerRepository) ListAll(ctx context.Context, accountID uuid.UUID, filter domainRepo.TransactionFilter) ([]entity.Transaction, error) {
	var txs []entity.Transaction
	err := r.filtered(ctx, accountID, filter).
		Preload("Items").
		Order("date DESC, created_at DESC").
		Find(&txs).Error
	return txs, err
}

type customerDue struct {
	CustomerID uuid.UUID
	Due        decimal.Decimal
}

func (r *ledgerRepository) DueByCustomer(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []customerDue
	err := r.db.WithContext(ctx).Model(&entity.Transaction{}).Scopes(AccountScope(accountID)).
		Select("customer_id, COALESCE(SUM(due_amount), 0) AS due").
		Group("customer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dues := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		dues[row.CustomerID] = row.Due
	}
	return dues, nil
}

func (r *ledgerRepository) SetTotalDue(ctx context.Context, accountID uuid.UUID, dues map[uuid.UUID]decimal.Decimal) error {
	if len(dues) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, due := range dues {
			if err := tx.Unscoped().Model(&entity.Customer{}).
				Scopes(AccountScope(accountID)).
				Where("id = ?", id).
				Update("total_due", due).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
