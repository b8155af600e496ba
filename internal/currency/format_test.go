package currency

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormat(t *testing.T) {
	if got := Format(decimal.RequireFromString("1234.5"), "USD"); got != "$1,234.50" {
		t.Errorf("Format USD = %q", got)
	}
	if got := Format(decimal.RequireFromString("12.345"), "ZZZ"); got != "ZZZ 12.35" {
		t.Errorf("Format unknown = %q", got)
	}
}
