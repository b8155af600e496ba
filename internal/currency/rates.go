package currency

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// ratesFile is the on-disk layout of a rate table:
//
//	reference = "INR"
//
//	[rates]
//	USD = "83"
//	EUR = "90.5"
//
// Rates are quoted so they are read as exact decimals.
type ratesFile struct {
	Reference string            `toml:"reference"`
	Rates     map[string]string `toml:"rates"`
}

// LoadRates reads a rate table from a TOML file. An empty path returns
// DefaultRates. The reference currency is added with rate 1 if missing.
func LoadRates(path string) (map[string]decimal.Decimal, error) {
	if path == "" {
		return DefaultRates(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rates file: %w", err)
	}
	return ParseRates(string(data))
}

// ParseRates parses the TOML rate table format.
func ParseRates(doc string) (map[string]decimal.Decimal, error) {
	var f ratesFile
	if _, err := toml.Decode(doc, &f); err != nil {
		return nil, fmt.Errorf("parsing rates: %w", err)
	}

	ref := strings.ToUpper(strings.TrimSpace(f.Reference))
	if ref == "" {
		ref = Reference
	}

	rates := make(map[string]decimal.Decimal, len(f.Rates)+1)
	for code, raw := range f.Rates {
		code = strings.ToUpper(strings.TrimSpace(code))
		r, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", code, err)
		}
		if !r.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive, got %s", code, r)
		}
		rates[code] = r
	}

	one := decimal.NewFromInt(1)
	if r, ok := rates[ref]; ok && !r.Equal(one) {
		return nil, fmt.Errorf("reference currency %s must have rate 1, got %s", ref, r)
	}
	rates[ref] = one

	return rates, nil
}
