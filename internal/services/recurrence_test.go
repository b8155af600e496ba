package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"finledger/internal/core"
	"finledger/internal/storage"
)

func addRule(t *testing.T, s *storage.Store, rule core.RecurringRule) int64 {
	t.Helper()
	id, err := s.AddRecurringRule(context.Background(), "alice", rule)
	if err != nil {
		t.Fatalf("AddRecurringRule: %v", err)
	}
	return id
}

func TestProcessDueAdvancesOnePeriod(t *testing.T) {
	store := newStore(t)
	pub := &recordingPublisher{}
	engine := NewRecurrenceEngine(store, pub)
	ctx := context.Background()

	addRule(t, store, core.RecurringRule{
		Category:    "Rent",
		Amount:      dec("500"),
		Kind:        core.Expense,
		Description: "flat",
		Frequency:   core.Monthly,
		StartDate:   d("2024-01-31"),
		Currency:    "INR",
	})

	today := d("2024-03-10")
	result, err := engine.ProcessDue(ctx, "alice", today)
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if result.Materialized() != 1 || len(result.Failures) != 0 {
		t.Fatalf("result = %+v, want one record and no failures", result)
	}

	rules, err := store.ListRecurringRules(ctx, "alice")
	if err != nil {
		t.Fatalf("ListRecurringRules: %v", err)
	}
	if got := rules[0].NextDue.String(); got != "2024-02-28" {
		t.Errorf("next_due = %s, want 2024-02-28 (one period, clamped)", got)
	}

	records, err := store.ListRecords(ctx, "alice")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.Date.String() != "2024-03-10" || r.Description != "[Recurring] flat" || r.Category != "Rent" {
		t.Errorf("record = %+v", r)
	}
	if types := pub.types(); len(types) != 1 || types[0] != "record.materialized" {
		t.Errorf("events = %v", types)
	}

	// Still behind: a second call catches up exactly one more period.
	if _, err := engine.ProcessDue(ctx, "alice", today); err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	rules, _ = store.ListRecurringRules(ctx, "alice")
	if got := rules[0].NextDue.String(); got != "2024-03-28" {
		t.Errorf("next_due after second pass = %s, want 2024-03-28", got)
	}
}

func TestProcessDueSkipsFutureRules(t *testing.T) {
	store := newStore(t)
	engine := NewRecurrenceEngine(store, nil)

	addRule(t, store, core.RecurringRule{
		Amount:    dec("10"),
		Kind:      core.Income,
		Frequency: core.Daily,
		StartDate: d("2024-06-02"),
		Currency:  "INR",
	})

	result, err := engine.ProcessDue(context.Background(), "alice", d("2024-06-01"))
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if result.Checked != 1 || result.Materialized() != 0 {
		t.Errorf("result = %+v, want nothing materialized", result)
	}
}

type flakyRuleStore struct {
	rules   []core.RecurringRule
	failID  int64
	created []int64
}

func (f *flakyRuleStore) ListRecurringRules(context.Context, string) ([]core.RecurringRule, error) {
	return f.rules, nil
}

func (f *flakyRuleStore) MaterializeRule(_ context.Context, _ string, _ core.Record, ruleID int64, _, _ core.Date) (int64, error) {
	if ruleID == f.failID {
		return 0, &core.StorageError{Op: "materialize rule", Err: errors.New("disk full")}
	}
	if ruleID == 99 {
		return 0, core.ErrStaleRule
	}
	f.created = append(f.created, ruleID)
	return ruleID * 10, nil
}

func TestProcessDueCollectsPerRuleFailures(t *testing.T) {
	base := core.RecurringRule{Amount: dec("1"), Kind: core.Expense, Frequency: core.Daily, Currency: "INR"}
	r1, r2, r3, r4 := base, base, base, base
	r1.ID, r1.NextDue = 1, d("2024-01-01")
	r2.ID, r2.NextDue, r2.Description = 2, d("2024-01-01"), "broken"
	r3.ID, r3.NextDue = 3, d("2024-01-01")
	r4.ID, r4.NextDue = 99, d("2024-01-01")

	store := &flakyRuleStore{rules: []core.RecurringRule{r1, r2, r3, r4}, failID: 2}
	engine := NewRecurrenceEngine(store, nil)

	result, err := engine.ProcessDue(context.Background(), "alice", d("2024-01-01"))
	if err != nil {
		t.Fatalf("ProcessDue returned %v; per-rule errors must not fail the call", err)
	}
	if len(store.created) != 2 || store.created[0] != 1 || store.created[1] != 3 {
		t.Errorf("created = %v, want [1 3]", store.created)
	}
	if len(result.Failures) != 1 || result.Failures[0].RuleID != 2 {
		t.Fatalf("failures = %+v", result.Failures)
	}
	if !strings.Contains(result.Err().Error(), "broken") {
		t.Errorf("Err() = %v", result.Err())
	}
	var stErr *core.StorageError
	if !errors.As(result.Err(), &stErr) {
		t.Errorf("Err() should unwrap to StorageError")
	}
}

type failingListStore struct{ flakyRuleStore }

func (failingListStore) ListRecurringRules(context.Context, string) ([]core.RecurringRule, error) {
	return nil, errors.New("boom")
}

func TestProcessDueListFailure(t *testing.T) {
	engine := NewRecurrenceEngine(&failingListStore{}, nil)
	if _, err := engine.ProcessDue(context.Background(), "alice", d("2024-01-01")); err == nil {
		t.Fatal("expected list failure to be returned")
	}
}

func TestProcessDueLongestRuleDescription(t *testing.T) {
	store := newStore(t)
	engine := NewRecurrenceEngine(store, nil)
	ctx := context.Background()

	rule := core.RecurringRule{
		Category:    "Gym",
		Amount:      dec("30"),
		Kind:        core.Expense,
		Description: strings.Repeat("é", core.MaxRuleDescription),
		Frequency:   core.Daily,
		StartDate:   d("2024-01-01"),
		Currency:    "INR",
	}
	addRule(t, store, rule)

	result, err := engine.ProcessDue(ctx, "alice", d("2024-01-05"))
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if result.Materialized() != 1 || len(result.Failures) != 0 {
		t.Fatalf("result = %+v, want the rule materialized", result)
	}
	rules, _ := store.ListRecurringRules(ctx, "alice")
	if got := rules[0].NextDue.String(); got != "2024-01-02" {
		t.Errorf("next_due = %s, want 2024-01-02", got)
	}

	rule.Description += "x"
	var vErr *core.ValidationError
	if _, err := store.AddRecurringRule(ctx, "alice", rule); !errors.As(err, &vErr) {
		t.Fatalf("AddRecurringRule with %d characters: err = %v, want ValidationError", core.MaxRuleDescription+1, err)
	}
}

func TestProcessDueDailyBehindAdvancesOneDay(t *testing.T) {
	store := newStore(t)
	engine := NewRecurrenceEngine(store, nil)
	ctx := context.Background()
	today := d("2024-05-10")

	addRule(t, store, core.RecurringRule{
		Category:  "Coffee",
		Amount:    dec("3.50"),
		Kind:      core.Expense,
		Frequency: core.Daily,
		StartDate: today.AddDays(-3),
		Currency:  "INR",
	})

	result, err := engine.ProcessDue(ctx, "alice", today)
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if result.Materialized() != 1 {
		t.Fatalf("materialized %d, want 1", result.Materialized())
	}
	rules, _ := store.ListRecurringRules(ctx, "alice")
	if !rules[0].NextDue.Equal(today.AddDays(-2)) {
		t.Errorf("next_due = %s, want %s", rules[0].NextDue, today.AddDays(-2))
	}
	records, _ := store.ListRecords(ctx, "alice")
	if len(records) != 1 || !records[0].Date.Equal(today) {
		t.Errorf("records = %+v, want one dated %s", records, today)
	}
}

func TestProcessDueReleasesNamespaceLocks(t *testing.T) {
	store := newStore(t)
	engine := NewRecurrenceEngine(store, nil)
	ctx := context.Background()

	for _, user := range []string{"alice", "bob", "carol"} {
		if _, err := engine.ProcessDue(ctx, user, d("2024-01-01")); err != nil {
			t.Fatalf("ProcessDue(%s): %v", user, err)
		}
	}
	engine.mu.Lock()
	n := len(engine.locks)
	engine.mu.Unlock()
	if n != 0 {
		t.Errorf("%d namespace locks retained after processing, want 0", n)
	}
}
