package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	domainRepo "github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/pkg/pagination"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Scopes(AccountScope(accountID)).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).Scopes(AccountScope(accountID)).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(product).
		Scopes(AccountScope(product.UserID)).
		Select(append(columns, "updated_at")).
		Updates(product).Error
}

func (r *productRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(AccountScope(accountID)).Delete(&entity.Product{}, "id = ?", id).Error
}

func (r *productRepository) List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, filter domainRepo.ProductFilter) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Product{}).Scopes(AccountScope(accountID))
	if filter.Search != "" {
		query = query.Where("name ILIKE ? OR category ILIKE ?", likePattern(filter.Search), likePattern(filter.Search))
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) ListAll(ctx context.Context, accountID uuid.UUID) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).Scopes(AccountScope(accountID)).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) LowStock(ctx context.Context, accountID uuid.UUID, threshold int) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).Scopes(AccountScope(accountID)).
		Where("quantity <= ?", threshold).
		Order("quantity ASC, name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) Count(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Product{}).Scopes(AccountScope(accountID)).Count(&count).Error
	return count, err
}
