package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// GetByUserID retrieves settings by user ID
func (r *settingsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.StoreSettings, error) {
	var settings entity.StoreSettings
	err := r.db.WithContext(ctx).Scopes(AccountScope(userID)).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Create creates store settings. A concurrent first read that already
// created the row is not an error.
func (r *settingsRepository) Create(ctx context.Context, settings *entity.StoreSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(settings).Error
}

// Update updates existing store settings
func (r *settingsRepository) Update(ctx context.Context, settings *entity.StoreSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
