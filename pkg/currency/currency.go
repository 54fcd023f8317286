// Package currency formats decimal amounts for display.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCode is used when no currency is configured
const DefaultCode = "BDT"

// Formatter renders amounts in one currency
type Formatter struct {
	code string
	cur  *money.Currency
}

// NewFormatter creates a formatter for an ISO 4217 code. Unknown codes
// format as plain two-decimal numbers followed by the code.
func NewFormatter(code string) *Formatter {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCode
	}
	return &Formatter{code: code, cur: money.GetCurrency(code)}
}

// Code returns the currency code
func (f *Formatter) Code() string {
	return f.code
}

func (f *Formatter) minor(amount decimal.Decimal) int64 {
	return amount.Shift(int32(f.cur.Fraction)).Round(0).IntPart()
}

// Format renders amount with the currency's symbol and grouping, e.g. "$1,234.50"
func (f *Formatter) Format(amount decimal.Decimal) string {
	if f.cur == nil {
		return f.Plain(amount)
	}
	return money.New(f.minor(amount), f.code).Display()
}

// Plain renders amount with ASCII-only grouping and the code as suffix,
// e.g. "1,234.50 BDT". Thermal printers without a Unicode code page use this.
func (f *Formatter) Plain(amount decimal.Decimal) string {
	if f.cur == nil {
		return amount.StringFixed(2) + " " + f.code
	}
	ascii := money.NewFormatter(f.cur.Fraction, f.cur.Decimal, f.cur.Thousand, f.code, "1 $")
	return ascii.Format(f.minor(amount))
}

// Number renders amount with grouping and no currency marker
func (f *Formatter) Number(amount decimal.Decimal) string {
	if f.cur == nil {
		return amount.StringFixed(2)
	}
	bare := money.NewFormatter(f.cur.Fraction, f.cur.Decimal, f.cur.Thousand, "", "1")
	return bare.Format(f.minor(amount))
}
