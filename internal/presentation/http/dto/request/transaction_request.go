package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineRequest is one sold product
type LineRequest struct {
	ProductID        uuid.UUID       `json:"product_id"`
	Quantity         int             `json:"quantity"`
	UnitSellingPrice decimal.Decimal `json:"unit_selling_price"`
}

// RecordTransactionRequest records a sale, or a payment when items is empty.
// Line rules are checked by the ledger so errors name the offending item.
type RecordTransactionRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	Items      []LineRequest   `json:"items"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Note       string          `json:"note" binding:"max=500"`
}

// TransactionFilterRequest represents ledger list filters. Dates are YYYY-MM-DD.
type TransactionFilterRequest struct {
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Kind       string `form:"kind" binding:"omitempty,txkind"`
	From       string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}
