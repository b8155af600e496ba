package currency

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestConvertIdentityIsExact(t *testing.T) {
	n := NewDefault()
	amounts := []string{"0", "0.1", "12.345678901234567891", "1000000"}
	for _, code := range n.Codes() {
		for _, a := range amounts {
			amount := decimal.RequireFromString(a)
			got := n.Convert(amount, code, code)
			if !got.Equal(amount) || got.String() != amount.String() {
				t.Errorf("Convert(%s, %s, %s) = %s, want %s", a, code, code, got, a)
			}
		}
	}
	if n.Fallbacks() != 0 {
		t.Fatalf("identity conversions must not hit the fallback, got %d", n.Fallbacks())
	}
}

func TestConvertUsesRateRatio(t *testing.T) {
	n := NewDefault()
	tests := []struct {
		amount, from, to, want string
	}{
		{"10", "USD", "INR", "830"},
		{"830", "INR", "USD", "10"},
		{"100", "GBP", "EUR", "111.1111111111111111"},
		{"9", "EUR", "GBP", "8.1"},
	}
	for _, tt := range tests {
		got := n.Convert(decimal.RequireFromString(tt.amount), tt.from, tt.to)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Convert(%s, %s, %s) = %s, want %s", tt.amount, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestConvertUnknownCodeFallsBack(t *testing.T) {
	var hooked []string
	n := NewDefault(WithFallbackHook(func(_ context.Context, _ decimal.Decimal, from, to string) {
		hooked = append(hooked, from+">"+to)
	}))

	got := n.Convert(decimal.NewFromInt(50), "ZZZ", "INR")
	if !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("fallback returned %s, want 50", got)
	}
	got = n.Convert(decimal.NewFromInt(7), "USD", "JPY")
	if !got.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("fallback returned %s, want 7", got)
	}

	if n.Fallbacks() != 2 {
		t.Fatalf("Fallbacks() = %d, want 2", n.Fallbacks())
	}
	if len(hooked) != 2 || hooked[0] != "ZZZ>INR" || hooked[1] != "USD>JPY" {
		t.Fatalf("unexpected hook calls %v", hooked)
	}
}

func TestNewCopiesRates(t *testing.T) {
	rates := DefaultRates()
	n := New(rates)
	delete(rates, "USD")
	if !n.Known("USD") {
		t.Fatal("normalizer must not share the caller's map")
	}
}

func TestCodes(t *testing.T) {
	got := NewDefault().Codes()
	want := []string{"EUR", "GBP", "INR", "USD"}
	if len(got) != len(want) {
		t.Fatalf("Codes() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Codes() = %v, want %v", got, want)
		}
	}
}
