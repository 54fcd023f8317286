package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a stocked item. Quantity never goes below zero.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Category    string          `gorm:"size:255;index" json:"category"`
	Quantity    int             `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	BuyingPrice decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"buying_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}
