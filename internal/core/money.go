// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user input
// and rounding them for reports.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a non-negative amount with at
// most two decimal places.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs are
// rejected: amounts are non-negative by convention and the kind carries the
// direction of the money flow.
//
// Examples:
//   ParseAmount("12.34") -> 12.34, nil
//   ParseAmount("12,34") -> 12.34, nil
//   ParseAmount("-1")    -> 0, error
//   ParseAmount("1.234") -> 0, error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "empty"}
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "sign not allowed: " + s}
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "malformed: " + s}
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return decimal.Zero, &ValidationError{Field: "amount", Reason: "malformed: " + s}
			}
		}
	}
	if len(parts) == 2 && len(parts[1]) > 2 {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "at most 2 decimal places: " + s}
	}
	if parts[0] == "" {
		s = "0" + s
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: err.Error()}
	}
	return d, nil
}

// Round2 rounds an amount to two decimal places for reporting.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
