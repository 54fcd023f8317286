package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
)

// DemoRepository writes the sample data set
type DemoRepository interface {
	// LoadDemo inserts the customers and products and renames the store in
	// one database transaction, returning the updated settings.
	LoadDemo(ctx context.Context, accountID uuid.UUID, customers []*entity.Customer, products []*entity.Product, storeName string) (*entity.StoreSettings, error)
}
