package entity

import "github.com/shopspring/decimal"

// ReceiptHeader holds the store branding printed at the top of a document.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Logo      string `json:"logo,omitempty"`
	Color     string `json:"color,omitempty"`
}

// ReceiptItem is a single line on a receipt.
type ReceiptItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// Receipt is a fully resolved, printable snapshot of a transaction together
// with the customer's balance around it. It is not persisted.
type Receipt struct {
	Header       ReceiptHeader   `json:"header"`
	Title        string          `json:"title"`
	InvoiceNo    string          `json:"invoice_no"`
	Date         string          `json:"date"`
	Customer     string          `json:"customer"`
	CustomerArea string          `json:"customer_area,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Items        []ReceiptItem   `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Paid         decimal.Decimal `json:"paid"`
	Due          decimal.Decimal `json:"due"`
	PreviousDue  decimal.Decimal `json:"previous_due"`
	NetDue       decimal.Decimal `json:"net_due"`
	Note         string          `json:"note,omitempty"`
}
