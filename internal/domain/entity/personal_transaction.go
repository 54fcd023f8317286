package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PersonalTransaction is an owner's income or expense, unrelated to the shop ledger.
type PersonalTransaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Type      enum.EntryType  `gorm:"size:16;not null;index" json:"type"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Category  string          `gorm:"size:255;not null" json:"category"`
	Note      string          `gorm:"type:text" json:"note"`
	Date      time.Time       `gorm:"not null;index" json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new entry
func (p *PersonalTransaction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PersonalTransaction model
func (PersonalTransaction) TableName() string {
	return "personal_transactions"
}

// Signed returns the amount with expenses negated
func (p *PersonalTransaction) Signed() decimal.Decimal {
	if p.Type == enum.EntryTypeExpense {
		return p.Amount.Neg()
	}
	return p.Amount
}
