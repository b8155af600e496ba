// Package currency converts amounts between currency codes using a static
// rate table. There is no live-rate fetching: the table is configuration.
package currency

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// Reference is the currency with rate 1 in the default table.
const Reference = "INR"

// DefaultRates expresses each code as units of the reference per one unit.
func DefaultRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"INR": decimal.NewFromInt(1),
		"USD": decimal.NewFromInt(83),
		"EUR": decimal.NewFromInt(90),
		"GBP": decimal.NewFromInt(100),
	}
}

// FallbackHook is called whenever a conversion falls back to the unchanged
// amount because a code is missing from the table.
type FallbackHook func(ctx context.Context, amount decimal.Decimal, from, to string)

// Normalizer converts amounts with a fixed rate table.
type Normalizer struct {
	rates     map[string]decimal.Decimal
	hook      FallbackHook
	fallbacks atomic.Int64
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithFallbackHook registers a hook for the unknown-code fallback path.
func WithFallbackHook(h FallbackHook) Option {
	return func(n *Normalizer) { n.hook = h }
}

// New creates a normalizer over a copy of rates.
func New(rates map[string]decimal.Decimal, opts ...Option) *Normalizer {
	n := &Normalizer{rates: maps.Clone(rates)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewDefault creates a normalizer over DefaultRates.
func NewDefault(opts ...Option) *Normalizer {
	return New(DefaultRates(), opts...)
}

// Convert is ConvertContext with a background context.
func (n *Normalizer) Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	return n.ConvertContext(context.Background(), amount, from, to)
}

// ConvertContext returns amount*rate[from]/rate[to]. Identical codes return
// amount untouched. When either code is not in the table the amount is
// returned unchanged and the fallback is recorded.
func (n *Normalizer) ConvertContext(ctx context.Context, amount decimal.Decimal, from, to string) decimal.Decimal {
	if from == to {
		return amount
	}
	rf, okFrom := n.rates[from]
	rt, okTo := n.rates[to]
	if !okFrom || !okTo {
		return n.fallback(ctx, amount, from, to)
	}
	return amount.Mul(rf).Div(rt)
}

func (n *Normalizer) fallback(ctx context.Context, amount decimal.Decimal, from, to string) decimal.Decimal {
	n.fallbacks.Add(1)
	slog.WarnContext(ctx, "Currency conversion fell back to unconverted amount",
		"from", from,
		"to", to,
		"amount", amount.String())
	if n.hook != nil {
		n.hook(ctx, amount, from, to)
	}
	return amount
}

// Fallbacks returns how many conversions used the fallback path.
func (n *Normalizer) Fallbacks() int64 {
	return n.fallbacks.Load()
}

// Known reports whether code is in the rate table.
func (n *Normalizer) Known(code string) bool {
	_, ok := n.rates[code]
	return ok
}

// Codes returns the supported codes, sorted.
func (n *Normalizer) Codes() []string {
	return slices.Sorted(maps.Keys(n.rates))
}
