package currency

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Format renders amount in the display style of code, e.g. "$1,234.50".
// Codes unknown to go-money are rendered as "<code> <amount>".
func Format(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return code + " " + amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}
