package services

import (
	"context"
	"fmt"
	"slices"

	"finledger/internal/core"

	"github.com/shopspring/decimal"
)

// PivotMonths is how many of the most recent months the pivot keeps.
const PivotMonths = 6

// Converter normalizes an amount between currency codes.
type Converter interface {
	ConvertContext(ctx context.Context, amount decimal.Decimal, from, to string) decimal.Decimal
}

// Reporter aggregates a namespace's records in its base currency.
type Reporter struct {
	store ReportStore
	conv  Converter
}

func NewReporter(store ReportStore, conv Converter) *Reporter {
	return &Reporter{store: store, conv: conv}
}

func (r *Reporter) load(ctx context.Context, username string) ([]core.Record, string, error) {
	base, err := r.store.BaseCurrency(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("read base currency: %w", err)
	}
	records, err := r.store.ListRecords(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("list records: %w", err)
	}
	return records, base, nil
}

// TotalByKind sums every record of kind in the base currency, rounded to
// two decimals.
func (r *Reporter) TotalByKind(ctx context.Context, username string, kind core.Kind) (decimal.Decimal, error) {
	if err := kind.Validate(); err != nil {
		return decimal.Zero, err
	}
	records, base, err := r.load(ctx, username)
	if err != nil {
		return decimal.Zero, err
	}
	return core.Round2(r.sum(ctx, records, kind, base)), nil
}

// Totals returns income and expenses in the base currency.
func (r *Reporter) Totals(ctx context.Context, username string) (core.Totals, error) {
	records, base, err := r.load(ctx, username)
	if err != nil {
		return core.Totals{}, err
	}
	return core.Totals{
		Currency: base,
		Income:   core.Round2(r.sum(ctx, records, core.Income, base)),
		Expenses: core.Round2(r.sum(ctx, records, core.Expense, base)),
	}, nil
}

func (r *Reporter) sum(ctx context.Context, records []core.Record, kind core.Kind, base string) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		if rec.Kind != kind {
			continue
		}
		total = total.Add(r.conv.ConvertContext(ctx, rec.Amount, rec.Currency, base))
	}
	return total
}

// MonthlyCategoryPivot builds the expense pivot of the last PivotMonths
// months that have expenses.
func (r *Reporter) MonthlyCategoryPivot(ctx context.Context, username string) (core.Pivot, error) {
	records, base, err := r.load(ctx, username)
	if err != nil {
		return core.Pivot{}, err
	}
	return BuildPivot(records, base, PivotMonths, func(rec core.Record) decimal.Decimal {
		return r.conv.ConvertContext(ctx, rec.Amount, rec.Currency, base)
	}), nil
}

// BuildPivot groups expense records by (month, category). Rows are the
// last maxMonths distinct months, ascending. Columns are every expense
// category, sorted. Missing cells are zero and all cells are rounded to
// two decimals.
func BuildPivot(records []core.Record, base string, maxMonths int, normalize func(core.Record) decimal.Decimal) core.Pivot {
	type key struct{ month, category string }

	sums := make(map[key]decimal.Decimal)
	monthSet := make(map[string]struct{})
	categorySet := make(map[string]struct{})
	for _, rec := range records {
		if rec.Kind != core.Expense {
			continue
		}
		k := key{rec.Date.MonthKey(), rec.Category}
		sums[k] = sums[k].Add(normalize(rec))
		monthSet[k.month] = struct{}{}
		categorySet[k.category] = struct{}{}
	}

	months := sortedKeys(monthSet)
	if maxMonths > 0 && len(months) > maxMonths {
		months = months[len(months)-maxMonths:]
	}
	categories := sortedKeys(categorySet)

	pivot := core.Pivot{
		Currency:   base,
		Months:     months,
		Categories: categories,
		Cells:      make([][]decimal.Decimal, len(months)),
	}
	for i, m := range months {
		row := make([]decimal.Decimal, len(categories))
		for j, c := range categories {
			row[j] = core.Round2(sums[key{m, c}])
		}
		pivot.Cells[i] = row
	}
	return pivot
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
