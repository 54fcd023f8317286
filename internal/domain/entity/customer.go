package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is a buyer with a running credit balance.
// TotalDue is owned by the ledger: it always equals the sum of the customer's
// transaction due amounts and is only moved by ledger writes.
type Customer struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Name      string          `gorm:"size:255;not null;index" json:"name"`
	Phone     string          `gorm:"size:50" json:"phone"`
	Upazila   string          `gorm:"size:255" json:"upazila"`
	TotalDue  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_due"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
