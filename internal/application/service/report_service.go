package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/ledger"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Sheet1"

var monthlyHeader = []string{"Month", "Sell", "Profit", "Buy", "Due", "Transactions"}

// ReportService derives monthly and all-time statistics from the ledger
type ReportService struct {
	ledgerRepo repository.LedgerRepository
	loc        *time.Location
	log        logrus.FieldLogger
}

// NewReportService creates a new report service
func NewReportService(ledgerRepo repository.LedgerRepository, loc *time.Location, log logrus.FieldLogger) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{ledgerRepo: ledgerRepo, loc: loc, log: log}
}

// Monthly returns one bucket per calendar month, newest first
func (s *ReportService) Monthly(ctx context.Context, sess *account.Session) ([]ledger.MonthlyBucket, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	txs, err := s.ledgerRepo.ListAll(ctx, sess.AccountID, repository.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	return ledger.FoldMonthly(txs, s.loc), nil
}

// Summary returns all-time totals
func (s *ReportService) Summary(ctx context.Context, sess *account.Session) (*ledger.Summary, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	txs, err := s.ledgerRepo.ListAll(ctx, sess.AccountID, repository.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	summary := ledger.Summarize(txs)
	return &summary, nil
}

// ExportMonthlyXLSX writes the monthly buckets and a totals row as a workbook
func (s *ReportService) ExportMonthlyXLSX(ctx context.Context, sess *account.Session, w io.Writer) error {
	buckets, err := s.Monthly(ctx, sess)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.WithError(err).Warn("failed to close workbook")
		}
	}()

	if err := writeMonthlySheet(f, buckets); err != nil {
		s.log.WithField("account_id", sess.AccountID).WithError(err).Error("failed to build monthly workbook")
		return apperror.NewInternalError("Failed to build report")
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeMonthlySheet(f *excelize.File, buckets []ledger.MonthlyBucket) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := make([]interface{}, len(monthlyHeader))
	for i, h := range monthlyHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return err
	}

	var total ledger.MonthlyBucket
	for i, b := range buckets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{b.Month, amount(b.Sell), amount(b.Profit), amount(b.Buy), amount(b.Due), b.Count}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return err
		}
		total.Sell = total.Sell.Add(b.Sell)
		total.Profit = total.Profit.Add(b.Profit)
		total.Buy = total.Buy.Add(b.Buy)
		total.Due = total.Due.Add(b.Due)
		total.Count += b.Count
	}

	totalRow := len(buckets) + 2
	cell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return err
	}
	row := []interface{}{"Total", amount(total.Sell), amount(total.Profit), amount(total.Buy), amount(total.Due), total.Count}
	if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(monthlyHeader), totalRow)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(reportSheet, "A1", "F1", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(reportSheet, cell, last, bold); err != nil {
		return err
	}
	return f.SetColWidth(reportSheet, "A", "F", 14)
}

// amount converts a money value for a spreadsheet cell, rounded to 2 places
func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
