// Package ledger holds the pure bookkeeping rules: how a sale or payment is
// priced, how stock moves, and how transactions fold into reports. It does no
// I/O; repositories and services apply its results.
package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyEntry is returned for an entry with no items and nothing paid.
	ErrEmptyEntry = errors.New("a transaction needs at least one item or a payment")
	// ErrNegativePaid is returned when the paid amount is below zero.
	ErrNegativePaid = errors.New("paid amount cannot be negative")
	// ErrPaidPrecision is returned when the paid amount has more places than AmountScale.
	ErrPaidPrecision = fmt.Errorf("paid amount cannot have more than %d decimal places", AmountScale)
	// ErrCustomerNotFound is returned by Apply when the customer row is missing or deleted.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound is returned by Apply when a sold product row is missing or deleted.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned by Apply under the reject policy.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// AmountScale is the number of decimal places stored for every amount
const AmountScale = 4

// fitsScale reports whether d is stored without rounding
func fitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(AmountScale))
}

// ItemError reports a rejected line item by its position
type ItemError struct {
	Index  int
	Reason string
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index, e.Reason)
}

// Line is a requested sale line with the product's buying price already resolved
type Line struct {
	ProductID        uuid.UUID
	ProductName      string
	Quantity         int
	UnitBuyingPrice  decimal.Decimal
	UnitSellingPrice decimal.Decimal
}

// Total returns quantity × selling price
func (l Line) Total() decimal.Decimal {
	return l.UnitSellingPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Profit returns quantity × (selling price − buying price)
func (l Line) Profit() decimal.Decimal {
	return l.UnitSellingPrice.Sub(l.UnitBuyingPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Amounts are the money fields of a ledger entry
type Amounts struct {
	Total  decimal.Decimal
	Paid   decimal.Decimal
	Due    decimal.Decimal
	Profit decimal.Decimal
}

// ValidateLines checks every line and the paid amount before anything is written
func ValidateLines(lines []Line, paid decimal.Decimal) error {
	if paid.IsNegative() {
		return ErrNegativePaid
	}
	if !fitsScale(paid) {
		return ErrPaidPrecision
	}
	if len(lines) == 0 && !paid.IsPositive() {
		return ErrEmptyEntry
	}
	for i, l := range lines {
		if l.ProductID == uuid.Nil {
			return &ItemError{Index: i, Reason: "product is required"}
		}
		if l.Quantity <= 0 {
			return &ItemError{Index: i, Reason: "quantity must be greater than zero"}
		}
		if l.UnitSellingPrice.IsNegative() {
			return &ItemError{Index: i, Reason: "selling price cannot be negative"}
		}
		if !fitsScale(l.UnitSellingPrice) {
			return &ItemError{Index: i, Reason: fmt.Sprintf("selling price cannot have more than %d decimal places", AmountScale)}
		}
	}
	return nil
}

// Compute prices an entry. With no lines the entry is a payment:
// total 0, due = −paid, profit 0.
func Compute(lines []Line, paid decimal.Decimal) (enum.TransactionKind, Amounts, error) {
	if err := ValidateLines(lines, paid); err != nil {
		return "", Amounts{}, err
	}
	if len(lines) == 0 {
		return enum.TransactionKindPayment, Amounts{
			Total:  decimal.Zero,
			Paid:   paid,
			Due:    paid.Neg(),
			Profit: decimal.Zero,
		}, nil
	}

	total := decimal.Zero
	profit := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
		profit = profit.Add(l.Profit())
	}
	return enum.TransactionKindSale, Amounts{
		Total:  total,
		Paid:   paid,
		Due:    total.Sub(paid),
		Profit: profit,
	}, nil
}

// NewEntry builds an unsaved transaction for a customer from priced lines
func NewEntry(customer *entity.Customer, lines []Line, paid decimal.Decimal, invoiceNo, note string, at time.Time) (*entity.Transaction, error) {
	kind, amounts, err := Compute(lines, paid)
	if err != nil {
		return nil, err
	}
	tx := newTransaction(customer, kind, amounts, invoiceNo, note, at)
	tx.Items = make([]entity.TransactionItem, 0, len(lines))
	for _, l := range lines {
		tx.Items = append(tx.Items, entity.TransactionItem{
			ProductID:        l.ProductID,
			ProductName:      l.ProductName,
			Quantity:         l.Quantity,
			UnitBuyingPrice:  l.UnitBuyingPrice,
			UnitSellingPrice: l.UnitSellingPrice,
			TotalPrice:       l.Total(),
		})
	}
	return tx, nil
}

// NewOpeningBalance builds the entry that carries an imported due onto a customer
func NewOpeningBalance(customer *entity.Customer, due decimal.Decimal, invoiceNo string, at time.Time) *entity.Transaction {
	return newTransaction(customer, enum.TransactionKindOpeningBalance, Amounts{Due: due}, invoiceNo, "", at)
}

// NewImported builds a historical entry taken verbatim from an import row.
// It has no items and therefore no stock effect.
func NewImported(customer *entity.Customer, amounts Amounts, invoiceNo string, at time.Time) *entity.Transaction {
	return newTransaction(customer, enum.TransactionKindImported, amounts, invoiceNo, "", at)
}

func newTransaction(customer *entity.Customer, kind enum.TransactionKind, a Amounts, invoiceNo, note string, at time.Time) *entity.Transaction {
	return &entity.Transaction{
		UserID:       customer.UserID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Kind:         kind,
		InvoiceNo:    invoiceNo,
		TotalAmount:  a.Total,
		PaidAmount:   a.Paid,
		DueAmount:    a.Due,
		Profit:       a.Profit,
		Note:         note,
		Date:         at,
	}
}

// StockMove is the number of units an entry takes off one product
type StockMove struct {
	ProductID uuid.UUID
	Quantity  int
}

// StockMoves sums item quantities per product, ordered by product id so
// concurrent entries lock product rows in the same order.
func StockMoves(items []entity.TransactionItem) []StockMove {
	sold := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		sold[it.ProductID] += it.Quantity
	}
	moves := make([]StockMove, 0, len(sold))
	for id, n := range sold {
		moves = append(moves, StockMove{ProductID: id, Quantity: n})
	}
	sort.Slice(moves, func(i, j int) bool {
		return bytes.Compare(moves[i].ProductID[:], moves[j].ProductID[:]) < 0
	})
	return moves
}
