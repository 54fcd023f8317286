package service

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/currency"
	"github.com/sangkips/hisab-api/pkg/printer"
	"github.com/sirupsen/logrus"
)

// PrinterService prints thermal receipts
type PrinterService struct {
	printer     printer.Printer
	documents   *DocumentService
	printerType string
	width       int
	money       *currency.Formatter
	log         logrus.FieldLogger
}

// NewPrinterService creates a new printer service
func NewPrinterService(
	p printer.Printer,
	documents *DocumentService,
	printerType string,
	width int,
	money *currency.Formatter,
	log logrus.FieldLogger,
) *PrinterService {
	if width <= 0 {
		width = 32
	}
	return &PrinterService{
		printer:     p,
		documents:   documents,
		printerType: printerType,
		width:       width,
		money:       money,
		log:         log,
	}
}

// PrinterStatus returns the current printer status information
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Width      int    `json:"width"`
}

// GetStatus returns printer connection status
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printer.Kind(),
		Width:      s.width,
	}
}

// PrintTransaction prints a transaction's receipt. The receipt is returned
// so the client can still show it when no printer is attached.
func (s *PrinterService) PrintTransaction(ctx context.Context, sess *account.Session, txID uuid.UUID) (*entity.Receipt, error) {
	rc, err := s.documents.Receipt(ctx, sess, txID)
	if err != nil {
		return nil, err
	}

	data := printer.BuildReceipt(rc, s.width, s.money)
	if err := s.printer.Print(data); err != nil {
		s.log.WithFields(logrus.Fields{
			"invoice_no": rc.InvoiceNo,
			"printer":    s.printer.Kind(),
		}).WithError(err).Error("failed to print receipt")
		return rc, apperror.NewAppError(http.StatusServiceUnavailable, "Failed to print receipt")
	}
	return rc, nil
}
