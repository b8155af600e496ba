package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finledger/internal/amqp"
	"finledger/internal/core"
	applog "finledger/internal/log"
	"finledger/internal/sheets"
	"finledger/internal/trace"
)

// RecordGetter loads a stored record from a user's namespace.
type RecordGetter interface {
	GetRecord(ctx context.Context, username string, id int64) (core.Record, error)
}

// SyncWorker exports records announced on the event bus to a spreadsheet.
type SyncWorker struct {
	records RecordGetter
	sheets  sheets.RecordWriter
	tracer  *trace.Tracer
}

func NewSyncWorker(records RecordGetter, writer sheets.RecordWriter) *SyncWorker {
	return &SyncWorker{records: records, sheets: writer, tracer: trace.New("evt")}
}

// HandleLedgerEvent appends the event's record to the sheet. Events that
// do not refer to a record are acknowledged and ignored. A record that no
// longer exists is dropped rather than retried.
func (w *SyncWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if !ev.IsRecordEvent() {
		slog.DebugContext(ctx, "Ignoring non-record event", "type", ev.Type, applog.FieldUser, ev.User)
		return nil
	}

	ctx, finish := w.tracer.Start(ctx, "sync_record", applog.FieldUser, ev.User, applog.FieldRecordID, ev.RecordID)
	err := w.sync(ctx, ev)
	finish(err)
	return err
}

// Metrics reports how many record events were handled and how many failed.
func (w *SyncWorker) Metrics() trace.Metrics { return w.tracer.Metrics() }

func (w *SyncWorker) sync(ctx context.Context, ev *amqp.LedgerEvent) error {

	rec, err := w.records.GetRecord(ctx, ev.User, ev.RecordID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Record from event not found, dropping",
			applog.FieldUser, ev.User,
			applog.FieldRecordID, ev.RecordID)
		return nil
	}
	var nsErr *core.NamespaceError
	if errors.As(err, &nsErr) {
		slog.WarnContext(ctx, "Event for invalid namespace, dropping", applog.FieldUser, ev.User, applog.FieldError, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	ref, err := w.sheets.AppendRecord(ctx, ev.User, rec)
	if err != nil {
		return fmt.Errorf("append record to sheet: %w", err)
	}

	slog.InfoContext(ctx, "Record synced",
		applog.FieldUser, ev.User,
		applog.FieldRecordID, ev.RecordID,
		"type", ev.Type,
		"ref", ref)
	return nil
}
