package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/ledger"
	domainRepo "github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

type ledgerSums struct {
	Sales  decimal.Decimal
	Profit decimal.Decimal
}

func (r *analyticsRepository) GetTotals(ctx context.Context, accountID uuid.UUID) (*domainRepo.LedgerTotals, error) {
	totals := &domainRepo.LedgerTotals{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&entity.Customer{}).Scopes(AccountScope(accountID)).Count(&totals.CustomerCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.Product{}).Scopes(AccountScope(accountID)).Count(&totals.ProductCount).Error; err != nil {
		return nil, err
	}

	var sums ledgerSums
	err := db.Model(&entity.Transaction{}).Scopes(AccountScope(accountID)).
		Select("COALESCE(SUM(total_amount), 0) AS sales, COALESCE(SUM(profit), 0) AS profit").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	totals.TotalSales = sums.Sales
	totals.TotalProfit = sums.Profit

	var outstanding decimal.Decimal
	err = db.Model(&entity.Customer{}).Scopes(AccountScope(accountID)).
		Select("COALESCE(SUM(total_due), 0)").
		Scan(&outstanding).Error
	if err != nil {
		return nil, err
	}
	totals.TotalOutstanding = outstanding

	return totals, nil
}

// GetDailySales loads the window's entries and buckets them by local day,
// so day boundaries follow loc rather than the database timezone.
func (r *analyticsRepository) GetDailySales(ctx context.Context, accountID uuid.UUID, days int, now time.Time, loc *time.Location) ([]domainRepo.DailySalesResult, error) {
	if loc == nil {
		loc = time.UTC
	}
	start := ledger.StartOfWindow(days, now, loc)

	var txs []entity.Transaction
	err := r.db.WithContext(ctx).Scopes(AccountScope(accountID)).
		Select("date", "total_amount", "profit").
		Where("date >= ?", start).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}

	points := ledger.FoldDaily(txs, days, now, loc)
	results := make([]domainRepo.DailySalesResult, 0, len(points))
	for _, p := range points {
		day, _ := time.ParseInLocation(time.DateOnly, p.Date, loc)
		results = append(results, domainRepo.DailySalesResult{
			Date:   day,
			Sales:  p.Sales,
			Profit: p.Profit,
		})
	}
	return results, nil
}
