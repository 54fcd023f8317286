package enum

// TransactionKind tags the variant of a ledger entry
type TransactionKind string

const (
	// TransactionKindSale is a sale with line items
	TransactionKindSale TransactionKind = "sale"
	// TransactionKindPayment reduces a customer's due without selling anything
	TransactionKindPayment TransactionKind = "payment"
	// TransactionKindOpeningBalance carries a due brought in by customer import
	TransactionKindOpeningBalance TransactionKind = "opening_balance"
	// TransactionKindImported is a historical sale brought in by transaction import
	TransactionKindImported TransactionKind = "imported"
)

// IsValid checks if the transaction kind is known
func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionKindSale, TransactionKindPayment, TransactionKindOpeningBalance, TransactionKindImported:
		return true
	}
	return false
}

// String returns the string representation
func (k TransactionKind) String() string {
	return string(k)
}

// Label returns a display label used on printed documents
func (k TransactionKind) Label() string {
	switch k {
	case TransactionKindSale:
		return "Invoice"
	case TransactionKindPayment:
		return "Payment Receipt"
	case TransactionKindOpeningBalance:
		return "Opening Balance"
	case TransactionKindImported:
		return "Imported Sale"
	default:
		return "Transaction"
	}
}
