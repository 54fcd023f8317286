package entity

import "github.com/shopspring/decimal"

func init() {
	// Amounts are emitted as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}
