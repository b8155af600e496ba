package services

import (
	"context"
	"log/slog"

	"finledger/internal/amqp"
	"finledger/internal/core"
	applog "finledger/internal/log"
)

// RecordStore persists new records.
type RecordStore interface {
	AddRecord(ctx context.Context, username string, r core.Record) (int64, error)
}

// RuleStore is the subset of the ledger store the recurrence engine needs.
type RuleStore interface {
	ListRecurringRules(ctx context.Context, username string) ([]core.RecurringRule, error)
	MaterializeRule(ctx context.Context, username string, rec core.Record, ruleID int64, due, next core.Date) (int64, error)
}

// GoalDateStore yields the distinct days a goal was set, ascending.
type GoalDateStore interface {
	ListGoalDates(ctx context.Context, username string) ([]core.Date, error)
}

type AchievementStore interface {
	UnlockAchievementIfAbsent(ctx context.Context, username, name string, date core.Date) (bool, error)
	ListAchievements(ctx context.Context, username string) ([]core.Achievement, error)
}

type ReportStore interface {
	ListRecords(ctx context.Context, username string) ([]core.Record, error)
	BaseCurrency(ctx context.Context, username string) (string, error)
}

// EventPublisher announces ledger changes. A nil publisher disables events.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev amqp.LedgerEvent) error
}

func publish(ctx context.Context, p EventPublisher, ev amqp.LedgerEvent) {
	if p == nil {
		return
	}
	if err := p.PublishLedgerEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type,
			applog.FieldUser, ev.User,
			applog.FieldRecordID, ev.RecordID,
			applog.FieldError, err)
	}
}
