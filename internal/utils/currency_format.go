package utils

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an exact amount for display, rounded to the currency's
// minor unit. Example: 1234.5 in USD returns "$1,234.50".
func FormatMoney(amount decimal.Decimal, currencyCode string) string {
	cur := *money.New(0, currencyCode).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
