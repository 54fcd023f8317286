package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"gorm.io/gorm"
)

type demoRepository struct {
	db *gorm.DB
}

// NewDemoRepository creates a new demo data repository
func NewDemoRepository(db *gorm.DB) repository.DemoRepository {
	return &demoRepository{db: db}
}

func (r *demoRepository) LoadDemo(ctx context.Context, accountID uuid.UUID, customers []*entity.Customer, products []*entity.Product, storeName string) (*entity.StoreSettings, error) {
	var settings entity.StoreSettings
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(customers) > 0 {
			if err := tx.Create(&customers).Error; err != nil {
				return err
			}
		}
		if len(products) > 0 {
			if err := tx.Create(&products).Error; err != nil {
				return err
			}
		}

		if err := tx.Scopes(AccountScope(accountID)).
			Attrs(*entity.DefaultStoreSettings(accountID)).
			FirstOrCreate(&settings).Error; err != nil {
			return err
		}
		settings.Name = storeName
		return tx.Save(&settings).Error
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
