package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finledger/internal/core"
	applog "finledger/internal/log"
	"finledger/internal/services"
	"finledger/internal/trace"

	"golang.org/x/sync/errgroup"
)

// NamespaceLister enumerates every user namespace on disk.
type NamespaceLister interface {
	ListNamespaces(ctx context.Context) ([]string, error)
}

// DueProcessor runs one recurrence pass for a user.
type DueProcessor interface {
	ProcessDue(ctx context.Context, username string, today core.Date) (services.ProcessResult, error)
}

// BatchResult summarises one pass over all namespaces.
type BatchResult struct {
	Namespaces   int
	Materialized int
	RuleFailures int
	// Failed lists namespaces whose rules could not be read.
	Failed []string
}

// RecurringWorker materializes due recurring rules for every namespace,
// several namespaces at a time.
type RecurringWorker struct {
	namespaces  NamespaceLister
	processor   DueProcessor
	concurrency int
	today       func() core.Date
	tracer      *trace.Tracer
}

func NewRecurringWorker(namespaces NamespaceLister, processor DueProcessor, concurrency int) *RecurringWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RecurringWorker{
		namespaces:  namespaces,
		processor:   processor,
		concurrency: concurrency,
		today:       core.Today,
		tracer:      trace.New("batch"),
	}
}

// RunOnce processes every namespace once. A namespace that fails is
// reported in the result and does not stop the others.
func (w *RecurringWorker) RunOnce(ctx context.Context) (result BatchResult, err error) {
	ctx, finish := w.tracer.Start(ctx, "recurring_batch")
	defer func() { finish(err) }()

	users, err := w.namespaces.ListNamespaces(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list namespaces: %w", err)
	}

	today := w.today()
	result = BatchResult{Namespaces: len(users)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, user := range users {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := w.processor.ProcessDue(gctx, user, today)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.ErrorContext(gctx, "Recurring processing failed for namespace", applog.FieldUser, user, applog.FieldError, err)
				result.Failed = append(result.Failed, user)
				return nil
			}
			result.Materialized += res.Materialized()
			result.RuleFailures += len(res.Failures)
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return result, err
	}

	slog.InfoContext(ctx, "Recurring batch complete",
		"trace_id", trace.ID(ctx),
		"date", today.String(),
		"namespaces", result.Namespaces,
		"materialized", result.Materialized,
		"rule_failures", result.RuleFailures,
		"failed_namespaces", len(result.Failed))
	return result, nil
}

// Metrics reports how many batches ran and how long they took.
func (w *RecurringWorker) Metrics() trace.Metrics { return w.tracer.Metrics() }

// Run calls RunOnce immediately and then every interval until ctx is done.
func (w *RecurringWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			slog.ErrorContext(ctx, "Recurring batch failed", applog.FieldError, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
