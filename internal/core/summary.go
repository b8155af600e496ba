package core

import "github.com/shopspring/decimal"

// Totals is the income/expense summary of a namespace in its base currency.
type Totals struct {
	Currency string
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// Savings is income minus expenses.
func (t Totals) Savings() decimal.Decimal {
	return t.Income.Sub(t.Expenses)
}

// Pivot is a month x category matrix of summed expense amounts.
// Cells[i][j] belongs to Months[i] and Categories[j].
type Pivot struct {
	Currency   string
	Months     []string // YYYY-MM, ascending
	Categories []string
	Cells      [][]decimal.Decimal
}

// Value returns the cell for month and category, zero when either is absent.
func (p Pivot) Value(month, category string) decimal.Decimal {
	for i, m := range p.Months {
		if m != month {
			continue
		}
		for j, c := range p.Categories {
			if c == category {
				return p.Cells[i][j]
			}
		}
	}
	return decimal.Zero
}

// Empty reports whether the pivot has no rows.
func (p Pivot) Empty() bool {
	return len(p.Months) == 0
}
