package service

import (
	"context"
	"time"

	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/ledger"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DashboardDays is the length of the dashboard sales series
const DashboardDays = 7

// DashboardService provides dashboard statistics
type DashboardService struct {
	analyticsRepo     repository.AnalyticsRepository
	productRepo       repository.ProductRepository
	lowStockThreshold int
	loc               *time.Location
	now               func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	analyticsRepo repository.AnalyticsRepository,
	productRepo repository.ProductRepository,
	lowStockThreshold int,
	loc *time.Location,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		analyticsRepo:     analyticsRepo,
		productRepo:       productRepo,
		lowStockThreshold: lowStockThreshold,
		loc:               loc,
		now:               time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalCustomers   int64               `json:"total_customers"`
	TotalProducts    int64               `json:"total_products"`
	TotalSales       decimal.Decimal     `json:"total_sales"`
	TotalProfit      decimal.Decimal     `json:"total_profit"`
	TotalOutstanding decimal.Decimal     `json:"total_outstanding"`
	LowStockCount    int                 `json:"low_stock_count"`
	LowStock         []entity.Product    `json:"low_stock"`
	DailySales       []ledger.DailyPoint `json:"daily_sales"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context, sess *account.Session) (*DashboardStats, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}

	totals, err := s.analyticsRepo.GetTotals(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.productRepo.LowStock(ctx, sess.AccountID, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	if lowStock == nil {
		lowStock = []entity.Product{}
	}
	daily, err := s.analyticsRepo.GetDailySales(ctx, sess.AccountID, DashboardDays, s.now(), s.loc)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalCustomers:   totals.CustomerCount,
		TotalProducts:    totals.ProductCount,
		TotalSales:       totals.TotalSales,
		TotalProfit:      totals.TotalProfit,
		TotalOutstanding: totals.TotalOutstanding,
		LowStockCount:    len(lowStock),
		LowStock:         lowStock,
		DailySales:       make([]ledger.DailyPoint, 0, len(daily)),
	}
	for _, d := range daily {
		stats.DailySales = append(stats.DailySales, ledger.DailyPoint{
			Date:   d.Date.In(s.loc).Format(time.DateOnly),
			Sales:  d.Sales,
			Profit: d.Profit,
		})
	}
	return stats, nil
}
