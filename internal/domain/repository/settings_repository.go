package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
)

// SettingsRepository defines the interface for store settings
type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.StoreSettings, error)
	Create(ctx context.Context, settings *entity.StoreSettings) error
	Update(ctx context.Context, settings *entity.StoreSettings) error
}
