package request

import "github.com/shopspring/decimal"

// CreateCustomerRequest represents a customer creation request. A new
// customer always starts with a zero balance.
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Phone   string `json:"phone" binding:"max=50"`
	Upazila string `json:"upazila" binding:"max=255"`
}

// UpdateCustomerRequest represents a customer update request. The balance
// is not accepted here.
type UpdateCustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Upazila *string `json:"upazila" binding:"omitempty,max=255"`
}

// PaymentRequest represents a payment against a customer's due
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"decimal_gte0"`
	Note   string          `json:"note" binding:"max=500"`
}
