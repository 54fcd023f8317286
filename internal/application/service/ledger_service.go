package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/internal/domain/ledger"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/realtime"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/pagination"
	"github.com/sangkips/hisab-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// InvoicePrefix starts every generated invoice number
const InvoicePrefix = "INV"

// LedgerService records sales and payments and keeps balances and stock in step
type LedgerService struct {
	ledgerRepo   repository.LedgerRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	policy       enum.StockPolicy
	events       notifier
	log          logrus.FieldLogger
	now          func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	policy enum.StockPolicy,
	broker realtime.Broker,
	log logrus.FieldLogger,
) *LedgerService {
	return &LedgerService{
		ledgerRepo:   ledgerRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		policy:       policy,
		events:       newNotifier(broker, log),
		log:          log,
		now:          time.Now,
	}
}

// LineInput is one requested sale line
type LineInput struct {
	ProductID        uuid.UUID
	Quantity         int
	UnitSellingPrice decimal.Decimal
}

// RecordTransactionInput represents a sale, or a payment when Items is empty
type RecordTransactionInput struct {
	CustomerID uuid.UUID
	Items      []LineInput
	PaidAmount decimal.Decimal
	Note       string
}

// RecordResult is the persisted entry with the customer's balance after it
type RecordResult struct {
	Transaction      *entity.Transaction `json:"transaction"`
	PreviousDue      decimal.Decimal     `json:"previous_due"`
	CustomerTotalDue decimal.Decimal     `json:"customer_total_due"`
	ClampedProducts  []uuid.UUID         `json:"clamped_products,omitempty"`
}

// RecordTransaction validates, prices and applies a sale or payment atomically
func (s *LedgerService) RecordTransaction(ctx context.Context, sess *account.Session, input *RecordTransactionInput) (*RecordResult, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}

	lines := make([]ledger.Line, len(input.Items))
	for i, it := range input.Items {
		lines[i] = ledger.Line{
			ProductID:        it.ProductID,
			Quantity:         it.Quantity,
			UnitSellingPrice: it.UnitSellingPrice,
		}
	}
	if err := ledger.ValidateLines(lines, input.PaidAmount); err != nil {
		return nil, validationError(err)
	}

	customer, err := s.customerRepo.GetByID(ctx, sess.AccountID, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	if err := s.resolveProducts(ctx, sess.AccountID, lines); err != nil {
		return nil, err
	}

	tx, err := ledger.NewEntry(customer, lines, input.PaidAmount, utils.GenerateInvoiceNo(InvoicePrefix), strings.TrimSpace(input.Note), s.now())
	if err != nil {
		return nil, validationError(err)
	}

	result, err := s.apply(ctx, sess, tx)
	if err != nil {
		return nil, err
	}
	return &RecordResult{
		Transaction:      tx,
		PreviousDue:      result.CustomerTotalDue.Sub(tx.DueAmount),
		CustomerTotalDue: result.CustomerTotalDue,
		ClampedProducts:  result.Clamped,
	}, nil
}

// resolveProducts fills each line's name and buying price from one batched lookup
func (s *LedgerService) resolveProducts(ctx context.Context, accountID uuid.UUID, lines []ledger.Line) error {
	if len(lines) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; !ok {
			seen[l.ProductID] = struct{}{}
			ids = append(ids, l.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, accountID, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for i := range lines {
		p, ok := byID[lines[i].ProductID]
		if !ok {
			return apperror.NewNotFoundError(fmt.Sprintf("Product %s", lines[i].ProductID))
		}
		lines[i].ProductName = p.Name
		lines[i].UnitBuyingPrice = p.BuyingPrice
	}
	return nil
}

// RecordPayment records a payment of amount against a customer's due
func (s *LedgerService) RecordPayment(ctx context.Context, sess *account.Session, customerID uuid.UUID, amount decimal.Decimal, note string) (*RecordResult, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewFieldError("amount", "must be greater than zero")
	}
	return s.RecordTransaction(ctx, sess, &RecordTransactionInput{
		CustomerID: customerID,
		PaidAmount: amount,
		Note:       note,
	})
}

// Book applies a prepared entry, such as an opening balance or an imported sale
func (s *LedgerService) Book(ctx context.Context, sess *account.Session, tx *entity.Transaction) (*repository.ApplyResult, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	if tx.UserID != sess.AccountID {
		return nil, apperror.ErrForbidden
	}
	return s.apply(ctx, sess, tx)
}

func (s *LedgerService) apply(ctx context.Context, sess *account.Session, tx *entity.Transaction) (*repository.ApplyResult, error) {
	result, err := s.ledgerRepo.Apply(ctx, tx, s.policy)
	if err != nil {
		return nil, s.applyError(tx, err)
	}

	if len(result.Clamped) > 0 {
		s.log.WithFields(logrus.Fields{
			"transaction_id": tx.ID,
			"invoice_no":     tx.InvoiceNo,
			"products":       result.Clamped,
		}).Warn("sale exceeded stock; quantity held at zero")
	}

	s.events.notify(ctx, sess.AccountID, CollectionTransactions, realtime.ActionCreated, tx.ID)
	s.events.notify(ctx, sess.AccountID, CollectionCustomers, realtime.ActionUpdated, tx.CustomerID)
	for _, move := range ledger.StockMoves(tx.Items) {
		s.events.notify(ctx, sess.AccountID, CollectionProducts, realtime.ActionUpdated, move.ProductID)
	}
	return result, nil
}

func (s *LedgerService) applyError(tx *entity.Transaction, err error) error {
	switch {
	case errors.Is(err, ledger.ErrCustomerNotFound):
		return apperror.NewNotFoundError("Customer")
	case errors.Is(err, ledger.ErrProductNotFound):
		return apperror.NewNotFoundError("Product")
	case errors.Is(err, ledger.ErrInsufficientStock):
		return apperror.NewConflictError("Insufficient stock for one or more products")
	}
	s.log.WithFields(logrus.Fields{
		"module":      "ledger",
		"customer_id": tx.CustomerID,
		"kind":        tx.Kind,
		"invoice_no":  tx.InvoiceNo,
	}).WithError(err).Error("failed to apply ledger entry")
	return apperror.NewInternalError("Failed to record transaction")
}

// validationError maps pure ledger rule failures to 422 responses
func validationError(err error) error {
	var itemErr *ledger.ItemError
	switch {
	case errors.As(err, &itemErr):
		return apperror.NewFieldError(fmt.Sprintf("items[%d]", itemErr.Index), itemErr.Reason)
	case errors.Is(err, ledger.ErrNegativePaid), errors.Is(err, ledger.ErrPaidPrecision):
		return apperror.NewFieldError("paid_amount", err.Error())
	case errors.Is(err, ledger.ErrEmptyEntry):
		return apperror.NewFieldError("items", err.Error())
	}
	return err
}

// GetTransaction retrieves a transaction with its items
func (s *LedgerService) GetTransaction(ctx context.Context, sess *account.Session, id uuid.UUID) (*entity.Transaction, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	tx, err := s.ledgerRepo.GetByID(ctx, sess.AccountID, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	return tx, nil
}

// ListTransactions lists transactions newest first
func (s *LedgerService) ListTransactions(ctx context.Context, sess *account.Session, params *pagination.PaginationParams, filter repository.TransactionFilter) (*pagination.PaginatedResult[entity.Transaction], error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	if filter.Kind != "" && !filter.Kind.IsValid() {
		return nil, apperror.NewFieldError("kind", "is not a known transaction kind")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperror.NewFieldError("to", "must not be before from")
	}
	params.Validate()

	txs, total, err := s.ledgerRepo.List(ctx, sess.AccountID, params, filter)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(txs, pag), nil
}

// CustomerHistory is a customer with every ledger entry, newest first
type CustomerHistory struct {
	Customer     *entity.Customer     `json:"customer"`
	Transactions []entity.Transaction `json:"transactions"`
}

// CustomerHistory returns a customer's entries. Deleted customers keep their history.
func (s *LedgerService) CustomerHistory(ctx context.Context, sess *account.Session, customerID uuid.UUID) (*CustomerHistory, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	customer, err := s.customerRepo.GetByIDUnscoped(ctx, sess.AccountID, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	txs, err := s.ledgerRepo.ListAll(ctx, sess.AccountID, repository.TransactionFilter{CustomerID: &customerID})
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []entity.Transaction{}
	}
	return &CustomerHistory{Customer: customer, Transactions: txs}, nil
}

// ReconcileResult reports balances that disagree with the ledger
type ReconcileResult struct {
	Checked  int            `json:"checked"`
	Drift    []ledger.Drift `json:"drift"`
	Repaired bool           `json:"repaired"`
}

// Reconcile compares every live customer's total_due with Σ due_amount.
// With repair set, drifted balances are rewritten from the ledger.
func (s *LedgerService) Reconcile(ctx context.Context, sess *account.Session, repair bool) (*ReconcileResult, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	customers, err := s.customerRepo.ListAll(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}
	dues, err := s.ledgerRepo.DueByCustomer(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}

	drift := ledger.FindDrift(customers, dues)
	result := &ReconcileResult{Checked: len(customers), Drift: drift}
	if !repair || len(drift) == 0 {
		return result, nil
	}

	fixed := make(map[uuid.UUID]decimal.Decimal, len(drift))
	for _, d := range drift {
		fixed[d.CustomerID] = d.Ledger
	}
	if err := s.ledgerRepo.SetTotalDue(ctx, sess.AccountID, fixed); err != nil {
		return nil, err
	}
	result.Repaired = true

	s.log.WithFields(logrus.Fields{
		"account_id": sess.AccountID,
		"customers":  len(drift),
	}).Warn("customer balances repaired from ledger")
	for id := range fixed {
		s.events.notify(ctx, sess.AccountID, CollectionCustomers, realtime.ActionUpdated, id)
	}
	return result, nil
}
