package core

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

const (
	// SettingBaseCurrency is the settings key holding the reporting currency.
	SettingBaseCurrency = "base_currency"

	// RecurringPrefix marks records materialized from a recurring rule.
	RecurringPrefix = "[Recurring] "

	// MaxDescription is the longest record description, in characters.
	MaxDescription = 200

	// MaxRuleDescription leaves room for RecurringPrefix (ASCII) so every
	// accepted rule materializes into a valid record.
	MaxRuleDescription = MaxDescription - len(RecurringPrefix)
)

func validateDescription(desc string, limit int) error {
	if utf8.RuneCountInString(desc) > limit {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("too long (max %d characters)", limit)}
	}
	return nil
}

type (
	Kind      string
	Frequency string

	Record struct {
		ID          int64
		Date        Date
		Category    string
		Amount      decimal.Decimal
		Kind        Kind
		Description string
		Currency    string
	}

	RecurringRule struct {
		ID          int64
		Category    string
		Amount      decimal.Decimal
		Kind        Kind
		Description string
		Frequency   Frequency
		StartDate   Date
		NextDue     Date // only field advanced after creation
		Currency    string
	}

	// GoalEntry is one row of the goal history, or the current goal.
	GoalEntry struct {
		ID     int64
		Date   Date
		Amount decimal.Decimal
	}

	Achievement struct {
		ID   int64
		Name string
		Date Date
	}
)

// ParseKind accepts "income"/"expense" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", &ValidationError{Field: "kind", Reason: "must be Income or Expense, got " + s}
}

// ParseFrequency accepts "daily", "weekly" and "monthly" in any case.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return &ValidationError{Field: "kind", Reason: "must be Income or Expense, got " + string(k)}
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly:
		return nil
	}
	return &ValidationError{Field: "frequency", Reason: "must be daily, weekly or monthly, got " + string(f)}
}

// Validate checks a record before it is stored. Currency codes are not
// checked: unknown codes are handled by the normalizer fallback.
func (r Record) Validate() error {
	if r.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "cannot be zero"}
	}
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if r.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "cannot be negative"}
	}
	return validateDescription(r.Description, MaxDescription)
}

func (rr RecurringRule) Validate() error {
	if rr.StartDate.IsZero() {
		return &ValidationError{Field: "start_date", Reason: "cannot be zero"}
	}
	if err := rr.Frequency.Validate(); err != nil {
		return err
	}
	if err := rr.Kind.Validate(); err != nil {
		return err
	}
	if rr.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "cannot be negative"}
	}
	return validateDescription(rr.Description, MaxRuleDescription)
}

// Materialize builds the record a rule produces when it falls due on day.
func (rr RecurringRule) Materialize(day Date) Record {
	return Record{
		Date:        day,
		Category:    rr.Category,
		Amount:      rr.Amount,
		Kind:        rr.Kind,
		Description: RecurringPrefix + rr.Description,
		Currency:    rr.Currency,
	}
}

// IsDue reports whether the rule should be materialized on today.
func (rr RecurringRule) IsDue(today Date) bool {
	return !today.Before(rr.NextDue)
}
