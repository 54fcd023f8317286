package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/ledger"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/lock"
	"github.com/sangkips/hisab-api/internal/infrastructure/realtime"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/csvcodec"
	"github.com/sangkips/hisab-api/pkg/phone"
	"github.com/sangkips/hisab-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// ImportResult reports how many data rows were read, booked and skipped
type ImportResult struct {
	TotalRows int `json:"total_rows"`
	Imported  int `json:"imported"`
	Skipped   int `json:"skipped"`
}

// TransferService imports and exports customers, products and transactions as CSV
type TransferService struct {
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	ledgerRepo   repository.LedgerRepository
	ledger       *LedgerService
	locker       lock.Locker
	lockTTL      time.Duration
	loc          *time.Location
	events       notifier
	log          logrus.FieldLogger
	now          func() time.Time
}

// NewTransferService creates a new import/export service
func NewTransferService(
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	ledgerRepo repository.LedgerRepository,
	ledgerService *LedgerService,
	locker lock.Locker,
	lockTTL time.Duration,
	loc *time.Location,
	broker realtime.Broker,
	log logrus.FieldLogger,
) *TransferService {
	if loc == nil {
		loc = time.UTC
	}
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	return &TransferService{
		customerRepo: customerRepo,
		productRepo:  productRepo,
		ledgerRepo:   ledgerRepo,
		ledger:       ledgerService,
		locker:       locker,
		lockTTL:      lockTTL,
		loc:          loc,
		events:       newNotifier(broker, log),
		log:          log,
		now:          time.Now,
	}
}

// importLockKey is the per-account key that serialises bulk imports
func importLockKey(sess *account.Session) string {
	return "lock:import:" + sess.AccountID.String()
}

// withImportLock runs fn while holding the account's import lock
func (s *TransferService) withImportLock(ctx context.Context, sess *account.Session, fn func() (*ImportResult, error)) (*ImportResult, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	l, err := s.locker.Obtain(ctx, importLockKey(sess), s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return nil, apperror.NewConflictError("Another import is running for this account")
		}
		return nil, err
	}
	defer func() {
		if err := l.Release(context.Background()); err != nil {
			s.log.WithField("account_id", sess.AccountID).WithError(err).Warn("failed to release import lock")
		}
	}()
	return fn()
}

func (s *TransferService) rowFailed(kind string, row int, err error) {
	s.log.WithFields(logrus.Fields{"import": kind, "row": row}).WithError(err).Warn("import row skipped")
}

func badFile(err error) error {
	return apperror.NewBadRequestError("Could not read CSV file: " + err.Error())
}

// ExportCustomers writes live customers with their current due
func (s *TransferService) ExportCustomers(ctx context.Context, sess *account.Session, w io.Writer) error {
	if err := sess.Validate(); err != nil {
		return apperror.ErrUnauthorized
	}
	customers, err := s.customerRepo.ListAll(ctx, sess.AccountID)
	if err != nil {
		return err
	}
	rows := make([]csvcodec.CustomerRow, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, csvcodec.CustomerRow{Name: c.Name, Phone: c.Phone, Area: c.Upazila, Due: c.TotalDue})
	}
	return csvcodec.WriteCustomers(w, rows)
}

// ImportCustomers creates a customer per row. A non-zero due is booked as an
// opening balance so the balance still equals the ledger sum; a row whose
// customer or opening balance cannot be stored leaves nothing behind.
func (s *TransferService) ImportCustomers(ctx context.Context, sess *account.Session, r io.Reader) (*ImportResult, error) {
	return s.withImportLock(ctx, sess, func() (*ImportResult, error) {
		rows, stats, err := csvcodec.ParseCustomers(r)
		if err != nil {
			return nil, badFile(err)
		}
		result := &ImportResult{TotalRows: stats.TotalRows, Skipped: stats.Skipped}

		for i, row := range rows {
			ph := row.Phone
			if ph == "" {
				ph = phone.Placeholder
			}
			customer := &entity.Customer{ID: uuid.New(), UserID: sess.AccountID, Name: row.Name, Phone: ph, Upazila: row.Area}
			var opening *entity.Transaction
			if !row.Due.IsZero() {
				opening = ledger.NewOpeningBalance(customer, row.Due, utils.GenerateInvoiceNo(InvoicePrefix), s.now())
			}
			if _, err := s.ledgerRepo.OpenAccount(ctx, customer, opening); err != nil {
				s.rowFailed("customers", i, err)
				result.Skipped++
				continue
			}
			s.events.notify(ctx, sess.AccountID, CollectionCustomers, realtime.ActionCreated, customer.ID)
			if opening != nil {
				s.events.notify(ctx, sess.AccountID, CollectionTransactions, realtime.ActionCreated, opening.ID)
			}
			result.Imported++
		}
		return result, nil
	})
}

// ExportProducts writes every product
func (s *TransferService) ExportProducts(ctx context.Context, sess *account.Session, w io.Writer) error {
	if err := sess.Validate(); err != nil {
		return apperror.ErrUnauthorized
	}
	products, err := s.productRepo.ListAll(ctx, sess.AccountID)
	if err != nil {
		return err
	}
	rows := make([]csvcodec.ProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, csvcodec.ProductRow{Name: p.Name, Category: p.Category, Quantity: p.Quantity, BuyingPrice: p.BuyingPrice})
	}
	return csvcodec.WriteProducts(w, rows)
}

// ImportProducts creates a product per row
func (s *TransferService) ImportProducts(ctx context.Context, sess *account.Session, r io.Reader) (*ImportResult, error) {
	return s.withImportLock(ctx, sess, func() (*ImportResult, error) {
		rows, stats, err := csvcodec.ParseProducts(r)
		if err != nil {
			return nil, badFile(err)
		}
		result := &ImportResult{TotalRows: stats.TotalRows, Skipped: stats.Skipped}

		for i, row := range rows {
			product := &entity.Product{
				UserID:      sess.AccountID,
				Name:        row.Name,
				Category:    row.Category,
				Quantity:    row.Quantity,
				BuyingPrice: row.BuyingPrice,
			}
			if err := s.productRepo.Create(ctx, product); err != nil {
				s.rowFailed("products", i, err)
				result.Skipped++
				continue
			}
			s.events.notify(ctx, sess.AccountID, CollectionProducts, realtime.ActionCreated, product.ID)
			result.Imported++
		}
		return result, nil
	})
}

// ExportTransactions writes the ledger, newest first
func (s *TransferService) ExportTransactions(ctx context.Context, sess *account.Session, filter repository.TransactionFilter, w io.Writer) error {
	if err := sess.Validate(); err != nil {
		return apperror.ErrUnauthorized
	}
	txs, err := s.ledgerRepo.ListAll(ctx, sess.AccountID, filter)
	if err != nil {
		return err
	}
	rows := make([]csvcodec.TransactionRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, csvcodec.TransactionRow{
			Date:         t.Date,
			CustomerName: t.CustomerName,
			Total:        t.TotalAmount,
			Paid:         t.PaidAmount,
			Due:          t.DueAmount,
			Profit:       t.Profit,
		})
	}
	return csvcodec.WriteTransactions(w, rows, s.loc)
}

// ImportTransactions books each row as an imported entry with no stock effect.
// The customer is matched by exact name or created.
func (s *TransferService) ImportTransactions(ctx context.Context, sess *account.Session, r io.Reader) (*ImportResult, error) {
	return s.withImportLock(ctx, sess, func() (*ImportResult, error) {
		rows, stats, err := csvcodec.ParseTransactions(r, s.loc)
		if err != nil {
			return nil, badFile(err)
		}
		result := &ImportResult{TotalRows: stats.TotalRows, Skipped: stats.Skipped}

		customers := make(map[string]*entity.Customer)
		for i, row := range rows {
			customer, err := s.importCustomer(ctx, sess, customers, row.CustomerName)
			if err != nil {
				s.rowFailed("transactions", i, err)
				result.Skipped++
				continue
			}

			date := row.Date
			if date.IsZero() {
				date = s.now()
			}
			entry := ledger.NewImported(customer, ledger.Amounts{
				Total:  row.Total,
				Paid:   row.Paid,
				Due:    row.Due,
				Profit: row.Profit,
			}, utils.GenerateInvoiceNo(InvoicePrefix), date)
			if _, err := s.ledger.Book(ctx, sess, entry); err != nil {
				s.rowFailed("transactions", i, err)
				result.Skipped++
				continue
			}
			result.Imported++
		}
		return result, nil
	})
}

func (s *TransferService) importCustomer(ctx context.Context, sess *account.Session, cache map[string]*entity.Customer, name string) (*entity.Customer, error) {
	if c, ok := cache[name]; ok {
		return c, nil
	}
	c, err := s.customerRepo.GetByName(ctx, sess.AccountID, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &entity.Customer{
			UserID:  sess.AccountID,
			Name:    name,
			Phone:   csvcodec.ImportedPhone,
			Upazila: csvcodec.ImportedArea,
		}
		if err := s.customerRepo.Create(ctx, c); err != nil {
			return nil, err
		}
		s.events.notify(ctx, sess.AccountID, CollectionCustomers, realtime.ActionCreated, c.ID)
	}
	cache[name] = c
	return c, nil
}
