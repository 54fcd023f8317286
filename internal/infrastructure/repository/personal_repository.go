package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	domainRepo "github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/pkg/pagination"
	"gorm.io/gorm"
)

type personalRepository struct {
	db *gorm.DB
}

// NewPersonalRepository creates a new personal income/expense repository
func NewPersonalRepository(db *gorm.DB) domainRepo.PersonalRepository {
	return &personalRepository{db: db}
}

func (r *personalRepository) Create(ctx context.Context, entry *entity.PersonalTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *personalRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.PersonalTransaction, error) {
	var entry entity.PersonalTransaction
	err := r.db.WithContext(ctx).Scopes(AccountScope(accountID)).First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &entry, err
}

func (r *personalRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(AccountScope(accountID)).Delete(&entity.PersonalTransaction{}, "id = ?", id).Error
}

func (r *personalRepository) List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, entryType enum.EntryType) ([]entity.PersonalTransaction, int64, error) {
	var entries []entity.PersonalTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PersonalTransaction{}).Scopes(AccountScope(accountID))
	if entryType != "" {
		query = query.Where("type = ?", entryType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("date DESC, created_at DESC").
		Find(&entries).Error

	return entries, total, err
}

func (r *personalRepository) ListAll(ctx context.Context, accountID uuid.UUID) ([]entity.PersonalTransaction, error) {
	var entries []entity.PersonalTransaction
	err := r.db.WithContext(ctx).Scopes(AccountScope(accountID)).
		Order("date DESC").
		Find(&entries).Error
	return entries, err
}
