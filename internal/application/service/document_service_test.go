package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/pkg/currency"
	"github.com/sangkips/hisab-api/pkg/printer"
)

// saleThenPayment books a 200 sale with 150 paid and a later payment of 30
func saleThenPayment(t *testing.T, h *harness) (*entity.Customer, *entity.Transaction, *entity.Transaction) {
	t.Helper()
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	h.ledger.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}

	c := h.customer(t, "Rahim")
	p := h.product(t, "Phone", 10, "60")
	sale, err := h.ledger.RecordTransaction(ctx, h.sess, &RecordTransactionInput{
		CustomerID: c.ID,
		Items:      []LineInput{{ProductID: p.ID, Quantity: 2, UnitSellingPrice: dec("100")}},
		PaidAmount: dec("150"),
	})
	if err != nil {
		t.Fatal(err)
	}
	pay, err := h.ledger.RecordPayment(ctx, h.sess, c.ID, dec("30"), "")
	if err != nil {
		t.Fatal(err)
	}
	return c, sale.Transaction, pay.Transaction
}

func TestReceiptBalances(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	_, sale, pay := saleThenPayment(t, h)
	ctx := context.Background()

	rc, err := h.documents.Receipt(ctx, h.sess, sale.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Title != "Invoice" || len(rc.Items) != 1 || !rc.PreviousDue.IsZero() || !rc.NetDue.Equal(dec("50")) {
		t.Errorf("sale receipt = %+v", rc)
	}
	if rc.Date != "2024-05-01 17:00" {
		t.Errorf("date = %s", rc.Date)
	}

	rc, err = h.documents.Receipt(ctx, h.sess, pay.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Title != "Payment Receipt" || !rc.PreviousDue.Equal(dec("50")) || !rc.NetDue.Equal(dec("20")) {
		t.Errorf("payment receipt = %+v", rc)
	}
	if rc.Header.StoreName != entity.DefaultStoreName {
		t.Errorf("header = %+v", rc.Header)
	}
}

func TestInvoiceAndStatementPDF(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	c, sale, _ := saleThenPayment(t, h)
	ctx := context.Background()

	if _, err := h.settings.UploadLogo(ctx, h.sess, "logo.png", pngOfWidth(t, 64, 32)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := h.documents.InvoicePDF(ctx, h.sess, sale.ID, &buf); err != nil {
		t.Fatalf("InvoicePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("invoice is not a PDF")
	}

	buf.Reset()
	customer, err := h.documents.StatementPDF(ctx, h.sess, c.ID, &buf)
	if err != nil {
		t.Fatalf("StatementPDF: %v", err)
	}
	if customer.ID != c.ID || !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("statement for %s, %d bytes", customer.Name, buf.Len())
	}
}

func TestReceiptUnknownTransaction(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	_, err := h.documents.Receipt(context.Background(), h.sess, h.sess.AccountID)
	wantStatus(t, err, http.StatusNotFound)
}

type brokenPrinter struct{ printer.MemoryPrinter }

func (p *brokenPrinter) Print(data []byte) error { return errors.New("paper out") }

func TestPrintTransaction(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	_, sale, _ := saleThenPayment(t, h)
	ctx := context.Background()
	money := currency.NewFormatter("BDT")

	mem := printer.NewMemoryPrinter()
	svc := NewPrinterService(mem, h.documents, "none", 0, money, testLogger())
	if st := svc.GetStatus(); st.Configured || st.Width != 32 {
		t.Errorf("status = %+v", st)
	}
	if _, err := svc.PrintTransaction(ctx, h.sess, sale.ID); err != nil {
		t.Fatal(err)
	}
	if len(mem.Jobs) != 1 || !bytes.Contains(mem.Jobs[0], []byte(sale.InvoiceNo)) {
		t.Errorf("jobs = %d", len(mem.Jobs))
	}

	svc = NewPrinterService(&brokenPrinter{}, h.documents, "usb", 48, money, testLogger())
	rc, err := svc.PrintTransaction(ctx, h.sess, sale.ID)
	wantStatus(t, err, http.StatusServiceUnavailable)
	if rc == nil || rc.InvoiceNo != sale.InvoiceNo {
		t.Error("receipt should still be returned when printing fails")
	}
}
