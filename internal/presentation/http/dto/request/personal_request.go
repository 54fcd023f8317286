package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePersonalRequest represents a personal income or expense entry
type CreatePersonalRequest struct {
	Type     string          `json:"type" binding:"required,entrytype"`
	Amount   decimal.Decimal `json:"amount" binding:"decimal_gte0"`
	Category string          `json:"category" binding:"required,max=255"`
	Note     string          `json:"note" binding:"max=500"`
	Date     *time.Time      `json:"date"`
}
