package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is an immutable ledger entry against a customer.
// DueAmount is the signed change it applies to the customer's balance.
type Transaction struct {
	ID           uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID            `gorm:"type:uuid;not null;index" json:"-"`
	CustomerID   uuid.UUID            `gorm:"type:uuid;not null;index" json:"customer_id"`
	CustomerName string               `gorm:"size:255;not null" json:"customer_name"`
	Kind         enum.TransactionKind `gorm:"size:32;not null;index" json:"kind"`
	InvoiceNo    string               `gorm:"size:32;not null;index" json:"invoice_no"`
	TotalAmount  decimal.Decimal      `gorm:"type:decimal(20,4);not null;default:0" json:"total_amount"`
	PaidAmount   decimal.Decimal      `gorm:"type:decimal(20,4);not null;default:0" json:"paid_amount"`
	DueAmount    decimal.Decimal      `gorm:"type:decimal(20,4);not null;default:0" json:"due_amount"`
	Profit       decimal.Decimal      `gorm:"type:decimal(20,4);not null;default:0" json:"profit"`
	Note         string               `gorm:"type:text" json:"note,omitempty"`
	Date         time.Time            `gorm:"not null;index" json:"date"`
	CreatedAt    time.Time            `json:"created_at"`

	Items []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionItem is a line of a sale. Prices are snapshots taken at sale time.
type TransactionItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName      string          `gorm:"size:255;not null" json:"product_name"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitBuyingPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_buying_price"`
	UnitSellingPrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_selling_price"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
}

// BeforeCreate generates a UUID before creating a new item
func (i *TransactionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TransactionItem model
func (TransactionItem) TableName() string {
	return "transaction_items"
}
