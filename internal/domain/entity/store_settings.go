package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store branding defaults applied when an account has never saved settings
const (
	DefaultStoreName    = "Amar Hisab"
	DefaultStoreAddress = "ঢাকা, বাংলাদেশ"
	DefaultStorePhone   = "০১xxxxxxxxx"
	DefaultInvoiceColor = "#4f46e5"
	DefaultInvoiceFont  = "'Hind Siliguri', sans-serif"
)

// StoreSettings holds per-account branding used on invoices and receipts
type StoreSettings struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	Name         string    `gorm:"size:255" json:"name"`
	Address      string    `gorm:"size:512" json:"address"`
	Phone        string    `gorm:"size:50" json:"phone"`
	Logo         string    `gorm:"size:1024" json:"logo"`
	InvoiceColor string    `gorm:"size:16" json:"color"`
	InvoiceFont  string    `gorm:"size:255" json:"font"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating new settings
func (s *StoreSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StoreSettings model
func (StoreSettings) TableName() string {
	return "store_settings"
}

// DefaultStoreSettings returns the settings a new account starts with
func DefaultStoreSettings(userID uuid.UUID) *StoreSettings {
	return &StoreSettings{
		UserID:       userID,
		Name:         DefaultStoreName,
		Address:      DefaultStoreAddress,
		Phone:        DefaultStorePhone,
		InvoiceColor: DefaultInvoiceColor,
		InvoiceFont:  DefaultInvoiceFont,
	}
}
