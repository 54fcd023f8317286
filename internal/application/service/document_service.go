package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/ledger"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/document"
	"github.com/sirupsen/logrus"
)

// receiptDateLayout is how dates appear on invoices and receipts
const receiptDateLayout = "2006-01-02 15:04"

// LogoLoader reads back a stored logo by URL
type LogoLoader interface {
	Load(ctx context.Context, url string) ([]byte, error)
}

// DocumentService builds receipts and renders invoices and statements
type DocumentService struct {
	ledger   *LedgerService
	settings *SettingsService
	renderer *document.Renderer
	logos    LogoLoader
	loc      *time.Location
	log      logrus.FieldLogger
}

// NewDocumentService creates a new document service. logos may be nil.
func NewDocumentService(
	ledgerService *LedgerService,
	settingsService *SettingsService,
	renderer *document.Renderer,
	logos LogoLoader,
	loc *time.Location,
	log logrus.FieldLogger,
) *DocumentService {
	if loc == nil {
		loc = time.UTC
	}
	return &DocumentService{
		ledger:   ledgerService,
		settings: settingsService,
		renderer: renderer,
		logos:    logos,
		loc:      loc,
		log:      log,
	}
}

// Receipt builds the printable view of a transaction, including the
// customer's balance before and after it
func (s *DocumentService) Receipt(ctx context.Context, sess *account.Session, txID uuid.UUID) (*entity.Receipt, error) {
	tx, err := s.ledger.GetTransaction(ctx, sess, txID)
	if err != nil {
		return nil, err
	}
	history, err := s.ledger.CustomerHistory(ctx, sess, tx.CustomerID)
	if err != nil {
		return nil, err
	}
	header, err := s.settings.Header(ctx, sess)
	if err != nil {
		return nil, err
	}

	netDue := tx.DueAmount
	for _, rb := range ledger.Statement(history.Transactions) {
		if rb.Transaction.ID == tx.ID {
			netDue = rb.Balance
			break
		}
	}

	rc := &entity.Receipt{
		Header:       header,
		Title:        tx.Kind.Label(),
		InvoiceNo:    tx.InvoiceNo,
		Date:         tx.Date.In(s.loc).Format(receiptDateLayout),
		Customer:     tx.CustomerName,
		CustomerArea: history.Customer.Upazila,
		Phone:        history.Customer.Phone,
		Items:        make([]entity.ReceiptItem, 0, len(tx.Items)),
		Total:        tx.TotalAmount,
		Paid:         tx.PaidAmount,
		Due:          tx.DueAmount,
		PreviousDue:  netDue.Sub(tx.DueAmount),
		NetDue:       netDue,
		Note:         tx.Note,
	}
	for _, it := range tx.Items {
		rc.Items = append(rc.Items, entity.ReceiptItem{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitSellingPrice,
			Total:     it.TotalPrice,
		})
	}
	return rc, nil
}

// InvoicePDF renders a sale invoice or payment receipt
func (s *DocumentService) InvoicePDF(ctx context.Context, sess *account.Session, txID uuid.UUID, w io.Writer) (*entity.Receipt, error) {
	rc, err := s.Receipt(ctx, sess, txID)
	if err != nil {
		return nil, err
	}
	if err := s.renderer.Invoice(w, rc, s.loadLogo(ctx, rc.Header.Logo)); err != nil {
		s.log.WithField("invoice_no", rc.InvoiceNo).WithError(err).Error("failed to render invoice")
		return nil, apperror.NewInternalError("Failed to render invoice")
	}
	return rc, nil
}

// StatementPDF renders a customer's ledger with a running balance
func (s *DocumentService) StatementPDF(ctx context.Context, sess *account.Session, customerID uuid.UUID, w io.Writer) (*entity.Customer, error) {
	history, err := s.ledger.CustomerHistory(ctx, sess, customerID)
	if err != nil {
		return nil, err
	}
	header, err := s.settings.Header(ctx, sess)
	if err != nil {
		return nil, err
	}

	running := ledger.Statement(history.Transactions)
	st := &document.Statement{
		Header:   header,
		Customer: history.Customer.Name,
		Area:     history.Customer.Upazila,
		Phone:    history.Customer.Phone,
		Lines:    make([]document.StatementLine, 0, len(running)),
		Printed:  time.Now().In(s.loc),
	}
	for _, rb := range running {
		t := rb.Transaction
		st.Lines = append(st.Lines, document.StatementLine{
			Date:      t.Date.In(s.loc),
			InvoiceNo: t.InvoiceNo,
			Kind:      t.Kind.Label(),
			Total:     t.TotalAmount,
			Paid:      t.PaidAmount,
			Due:       t.DueAmount,
			Balance:   rb.Balance,
		})
		st.Closing = rb.Balance
	}

	if err := s.renderer.Statement(w, st); err != nil {
		s.log.WithField("customer_id", customerID).WithError(err).Error("failed to render statement")
		return nil, apperror.NewInternalError("Failed to render statement")
	}
	return history.Customer, nil
}

// loadLogo returns nil when there is no logo or it cannot be read; documents render without it
func (s *DocumentService) loadLogo(ctx context.Context, url string) *document.Image {
	if url == "" || s.logos == nil {
		return nil
	}
	data, err := s.logos.Load(ctx, url)
	if err != nil {
		s.log.WithField("logo", url).WithError(err).Warn("failed to load logo")
		return nil
	}
	switch http.DetectContentType(data) {
	case "image/png":
		return &document.Image{Data: data, Type: "PNG"}
	case "image/jpeg":
		return &document.Image{Data: data, Type: "JPG"}
	}
	return nil
}
