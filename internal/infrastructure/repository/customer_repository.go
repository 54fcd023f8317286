package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	domainRepo "github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).Scopes(AccountScope(accountID)).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) GetByIDUnscoped(ctx context.Context, accountID, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).Unscoped().Scopes(AccountScope(accountID)).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) GetByName(ctx context.Context, accountID uuid.UUID, name string) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).Scopes(AccountScope(accountID)).
		Order("created_at ASC").
		First(&customer, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

// Update writes the editable profile fields only. total_due is left to the ledger.
func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Model(customer).
		Scopes(AccountScope(customer.UserID)).
		Select("name", "phone", "upazila", "updated_at").
		Updates(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(AccountScope(accountID)).Delete(&entity.Customer{}, "id = ?", id).Error
}

func (r *customerRepository) List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Customer{}).Scopes(AccountScope(accountID))
	if search != "" {
		query = query.Where("name ILIKE ? OR phone ILIKE ? OR upazila ILIKE ?",
			likePattern(search), likePattern(search), likePattern(search))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&customers).Error

	return customers, total, err
}

func (r *customerRepository) ListAll(ctx context.Context, accountID uuid.UUID) ([]entity.Customer, error) {
	var customers []entity.Customer
	err := r.db.WithContext(ctx).Scopes(AccountScope(accountID)).
		Order("name ASC").
		Find(&customers).Error
	return customers, err
}

func (r *customerRepository) Count(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Customer{}).Scopes(AccountScope(accountID)).Count(&count).Error
	return count, err
}

func (r *customerRepository) SumTotalDue(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&entity.Customer{}).Scopes(AccountScope(accountID)).
		Select("SUM(total_due)").
		Scan(&sum).Error
	if err != nil || !sum.Valid {
		return decimal.Zero, err
	}
	return sum.Decimal, nil
}
