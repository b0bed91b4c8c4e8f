package main

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// formatUSD renders d as US dollars, rounded to cents.
func formatUSD(d decimal.Decimal) string {
	cur := money.GetCurrency(money.USD)
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// formatUSDNull renders a null amount as "n/a".
func formatUSDNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return formatUSD(d.Decimal)
}
