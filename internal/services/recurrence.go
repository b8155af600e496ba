package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"finledger/internal/amqp"
	"finledger/internal/core"
	applog "finledger/internal/log"
)

// RuleFailure describes a rule that could not be materialized.
type RuleFailure struct {
	RuleID      int64
	Description string
	Err         error
}

func (f RuleFailure) Error() string {
	return fmt.Sprintf("rule %d (%s): %v", f.RuleID, f.Description, f.Err)
}

func (f RuleFailure) Unwrap() error { return f.Err }

// ProcessResult summarises one pass over a user's recurring rules.
type ProcessResult struct {
	Checked   int
	RecordIDs []int64
	Failures  []RuleFailure
}

// Materialized is the number of records created by the pass.
func (r ProcessResult) Materialized() int { return len(r.RecordIDs) }

// Err joins the per-rule failures, or returns nil when there were none.
func (r ProcessResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// RecurrenceEngine materializes recurring rules that have fallen due.
type RecurrenceEngine struct {
	store     RuleStore
	publisher EventPublisher

	mu    sync.Mutex
	locks map[string]*userLock
}

// userLock serialises passes for one namespace. It is dropped from the
// map once no pass holds or waits for it.
type userLock struct {
	sync.Mutex
	refs int
}

func NewRecurrenceEngine(store RuleStore, publisher EventPublisher) *RecurrenceEngine {
	return &RecurrenceEngine{
		store:     store,
		publisher: publisher,
		locks:     make(map[string]*userLock),
	}
}

func (e *RecurrenceEngine) acquire(username string) *userLock {
	e.mu.Lock()
	l, ok := e.locks[username]
	if !ok {
		l = &userLock{}
		e.locks[username] = l
	}
	l.refs++
	e.mu.Unlock()

	l.Lock()
	return l
}

func (e *RecurrenceEngine) release(username string, l *userLock) {
	l.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(e.locks, username)
	}
}

// ProcessDue materializes every rule with next_due on or before today and
// advances each by exactly one period. A failing rule is recorded in the
// result and does not stop the others; only failing to list the rules
// returns an error.
func (e *RecurrenceEngine) ProcessDue(ctx context.Context, username string, today core.Date) (ProcessResult, error) {
	l := e.acquire(username)
	defer e.release(username, l)

	var result ProcessResult

	rules, err := e.store.ListRecurringRules(ctx, username)
	if err != nil {
		return result, fmt.Errorf("list recurring rules: %w", err)
	}
	result.Checked = len(rules)

	for _, rule := range rules {
		if !rule.IsDue(today) {
			continue
		}

		id, err := e.materialize(ctx, username, rule, today)
		if errors.Is(err, core.ErrStaleRule) {
			slog.InfoContext(ctx, "Recurring rule already advanced, skipping",
				applog.FieldUser, username,
				applog.FieldRuleID, rule.ID)
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring rule",
				applog.FieldUser, username,
				applog.FieldRuleID, rule.ID,
				"description", rule.Description,
				applog.FieldError, err)
			result.Failures = append(result.Failures, RuleFailure{
				RuleID:      rule.ID,
				Description: rule.Description,
				Err:         err,
			})
			continue
		}

		result.RecordIDs = append(result.RecordIDs, id)
		publish(ctx, e.publisher, amqp.NewRecordEvent(amqp.EventRecordMaterialized, username, id))
	}

	if len(rules) > 0 {
		slog.InfoContext(ctx, "Recurring processing complete",
			applog.FieldUser, username,
			"date", today.String(),
			"checked", result.Checked,
			"materialized", result.Materialized(),
			"failed", len(result.Failures))
	}
	return result, nil
}

func (e *RecurrenceEngine) materialize(ctx context.Context, username string, rule core.RecurringRule, today core.Date) (int64, error) {
	advancer, err := GetScheduleAdvancer(rule.Frequency)
	if err != nil {
		return 0, err
	}
	next := advancer.Next(rule.NextDue)

	id, err := e.store.MaterializeRule(ctx, username, rule.Materialize(today), rule.ID, rule.NextDue, next)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Created record from recurring rule",
		applog.FieldUser, username,
		applog.FieldRuleID, rule.ID,
		applog.FieldRecordID, id,
		"frequency", rule.Frequency,
		"next_due", next.String())
	return id, nil
}
