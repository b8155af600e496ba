package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"finledger/internal/core"
	applog "finledger/internal/log"
	"finledger/internal/services"

	"github.com/shopspring/decimal"
)

// Store is everything the service reads and writes in a namespace.
type Store interface {
	services.RecordStore
	services.RuleStore
	services.GoalDateStore
	services.AchievementStore
	services.ReportStore

	AddRecurringRule(ctx context.Context, username string, rule core.RecurringRule) (int64, error)
	ReplaceCurrentGoal(ctx context.Context, username string, date core.Date, amount decimal.Decimal) error
	AppendGoalEntry(ctx context.Context, username string, date core.Date, amount decimal.Decimal) error
	CurrentGoal(ctx context.Context, username string) (core.GoalEntry, bool, error)
	ListGoalEntries(ctx context.Context, username string) ([]core.GoalEntry, error)
	SetBaseCurrency(ctx context.Context, username, code string) error
}

// Currencies converts amounts and knows which codes have a rate.
type Currencies interface {
	services.Converter
	Known(code string) bool
	Codes() []string
}

type Option func(*Service)

func WithMilestones(m Milestones) Option {
	return func(s *Service) { s.milestones = m }
}

// Service wires the ledger engines behind one session-scoped API.
type Service struct {
	store      Store
	currencies Currencies
	milestones Milestones

	records      *services.RecordService
	recurrence   *services.RecurrenceEngine
	streaks      *services.StreakTracker
	reporter     *services.Reporter
	achievements *services.AchievementEngine
}

// NewService builds the service. publisher may be nil.
func NewService(store Store, currencies Currencies, publisher services.EventPublisher, opts ...Option) *Service {
	s := &Service{
		store:        store,
		currencies:   currencies,
		milestones:   DefaultMilestones(),
		records:      services.NewRecordService(store, publisher),
		recurrence:   services.NewRecurrenceEngine(store, publisher),
		streaks:      services.NewStreakTracker(store),
		reporter:     services.NewReporter(store, currencies),
		achievements: services.NewAchievementEngine(store, publisher),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard is the landing view: recurring processing outcome and totals.
type Dashboard struct {
	Recurring services.ProcessResult
	Totals    core.Totals
}

// Dashboard materializes due recurring rules, then reports totals. Rule
// failures are returned inside the result rather than as an error.
func (s *Service) Dashboard(ctx context.Context, sess Session) (Dashboard, error) {
	res, err := s.recurrence.ProcessDue(ctx, sess.Username, sess.today())
	if err != nil {
		return Dashboard{}, fmt.Errorf("process recurring: %w", err)
	}
	totals, err := s.reporter.Totals(ctx, sess.Username)
	if err != nil {
		return Dashboard{Recurring: res}, fmt.Errorf("totals: %w", err)
	}
	return Dashboard{Recurring: res, Totals: totals}, nil
}

// Profile reports totals without running recurring processing.
func (s *Service) Profile(ctx context.Context, sess Session) (core.Totals, error) {
	return s.reporter.Totals(ctx, sess.Username)
}

func (s *Service) AddRecord(ctx context.Context, sess Session, r core.Record) (int64, error) {
	if r.Date.IsZero() {
		r.Date = sess.today()
	}
	if r.Currency == "" {
		base, err := s.store.BaseCurrency(ctx, sess.Username)
		if err != nil {
			return 0, err
		}
		r.Currency = base
	}
	r.Currency = strings.ToUpper(r.Currency)
	return s.records.CreateRecord(ctx, sess.Username, r)
}

// Records lists the user's records, newest first.
func (s *Service) Records(ctx context.Context, sess Session) ([]core.Record, error) {
	return s.store.ListRecords(ctx, sess.Username)
}

func (s *Service) AddRecurringRule(ctx context.Context, sess Session, rule core.RecurringRule) (int64, error) {
	if rule.StartDate.IsZero() {
		rule.StartDate = sess.today()
	}
	if rule.Currency == "" {
		base, err := s.store.BaseCurrency(ctx, sess.Username)
		if err != nil {
			return 0, err
		}
		rule.Currency = base
	}
	rule.Currency = strings.ToUpper(rule.Currency)
	return s.store.AddRecurringRule(ctx, sess.Username, rule)
}

func (s *Service) RecurringRules(ctx context.Context, sess Session) ([]core.RecurringRule, error) {
	return s.store.ListRecurringRules(ctx, sess.Username)
}

// ProcessRecurring runs one recurrence pass on its own.
func (s *Service) ProcessRecurring(ctx context.Context, sess Session) (services.ProcessResult, error) {
	return s.recurrence.ProcessDue(ctx, sess.Username, sess.today())
}

// SetGoal replaces the current goal, logs it in the history and awards
// the first-goal badge.
func (s *Service) SetGoal(ctx context.Context, sess Session, amount decimal.Decimal) error {
	today := sess.today()
	if err := s.store.ReplaceCurrentGoal(ctx, sess.Username, today, amount); err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	if err := s.store.AppendGoalEntry(ctx, sess.Username, today, amount); err != nil {
		return fmt.Errorf("log goal history: %w", err)
	}
	s.award(ctx, sess, s.milestones.FirstGoal)
	return nil
}

// Goals is the goal view of a namespace.
type Goals struct {
	Current    core.GoalEntry
	HasCurrent bool
	History    []core.GoalEntry
	Streaks    services.StreakSummary
}

// Goals returns the current goal, history and streaks, awarding the
// streak badge when the current streak is long enough.
func (s *Service) Goals(ctx context.Context, sess Session) (Goals, error) {
	var g Goals
	var err error

	if g.Current, g.HasCurrent, err = s.store.CurrentGoal(ctx, sess.Username); err != nil {
		return Goals{}, fmt.Errorf("current goal: %w", err)
	}
	if g.History, err = s.store.ListGoalEntries(ctx, sess.Username); err != nil {
		return Goals{}, fmt.Errorf("goal history: %w", err)
	}
	if g.Streaks, err = s.streaks.Summary(ctx, sess.Username, sess.today()); err != nil {
		return Goals{}, err
	}

	if s.milestones.StreakReached(g.Streaks.Current) {
		s.award(ctx, sess, s.milestones.Streak)
	}
	return g, nil
}

// Achievements awards the savings badge when income crosses the
// threshold, then lists every unlocked badge.
func (s *Service) Achievements(ctx context.Context, sess Session) ([]core.Achievement, error) {
	income, err := s.reporter.TotalByKind(ctx, sess.Username, core.Income)
	if err != nil {
		return nil, fmt.Errorf("total income: %w", err)
	}
	if s.milestones.IncomeReached(income) {
		s.award(ctx, sess, s.milestones.Savings)
	}
	return s.achievements.List(ctx, sess.Username)
}

// Prediction returns the monthly expense pivot used for budgeting.
func (s *Service) Prediction(ctx context.Context, sess Session) (core.Pivot, error) {
	return s.reporter.MonthlyCategoryPivot(ctx, sess.Username)
}

func (s *Service) BaseCurrency(ctx context.Context, sess Session) (string, error) {
	return s.store.BaseCurrency(ctx, sess.Username)
}

// SetBaseCurrency changes the reporting currency. Codes without a rate
// are rejected.
func (s *Service) SetBaseCurrency(ctx context.Context, sess Session, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !s.currencies.Known(code) {
		return &core.ValidationError{
			Field:  "currency",
			Reason: fmt.Sprintf("unknown code %q, want one of %s", code, strings.Join(s.currencies.Codes(), ", ")),
		}
	}
	return s.store.SetBaseCurrency(ctx, sess.Username, code)
}

// award unlocks a badge. Failures are logged and never reach the caller.
func (s *Service) award(ctx context.Context, sess Session, name string) {
	if name == "" {
		return
	}
	if _, err := s.achievements.Unlock(ctx, sess.Username, name, sess.today()); err != nil {
		slog.WarnContext(ctx, "Failed to unlock achievement",
			applog.FieldUser, sess.Username,
			applog.FieldAchievement, name,
			applog.FieldError, err)
	}
}
