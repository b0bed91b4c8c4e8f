package model

import "github.com/shopspring/decimal"

func init() {
	// Amounts are rendered as JSON numbers, the same as the dashboard expects.
	decimal.MarshalJSONWithoutQuotes = true
}

// NullDecimal builds a valid decimal.NullDecimal.
func NullDecimal(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
