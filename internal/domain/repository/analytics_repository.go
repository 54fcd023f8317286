package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerTotals holds account-wide counters for the dashboard
type LedgerTotals struct {
	CustomerCount    int64
	ProductCount     int64
	TotalSales       decimal.Decimal
	TotalProfit      decimal.Decimal
	TotalOutstanding decimal.Decimal
}

// DailySalesResult represents sales for a single local day
type DailySalesResult struct {
	Date   time.Time
	Sales  decimal.Decimal
	Profit decimal.Decimal
}

// AnalyticsRepository defines aggregation queries used by the dashboard
type AnalyticsRepository interface {
	GetTotals(ctx context.Context, accountID uuid.UUID) (*LedgerTotals, error)
	// GetDailySales returns one entry per day for the last n days in loc, oldest first.
	GetDailySales(ctx context.Context, accountID uuid.UUID, days int, now time.Time, loc *time.Location) ([]DailySalesResult, error)
}
