package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Category    string          `json:"category" binding:"max=255"`
	Quantity    int             `json:"quantity" binding:"min=0"`
	BuyingPrice decimal.Decimal `json:"buying_price" binding:"decimal_gte0"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Category    *string          `json:"category" binding:"omitempty,max=255"`
	Quantity    *int             `json:"quantity" binding:"omitempty,min=0"`
	BuyingPrice *decimal.Decimal `json:"buying_price" binding:"omitempty,decimal_gte0"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}
