// Package trace tags background operations with an ID carried in the
// context and logs their start, outcome and duration.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	applog "finledger/internal/log"
)

type contextKey string

const idKey contextKey = "trace_id"

// Metrics counts finished operations.
type Metrics struct {
	Total             int64
	Failed            int64
	AverageDurationUs int64
}

// Tracer starts traced operations and keeps running metrics for them.
type Tracer struct {
	prefix string
	total  atomic.Int64
	failed atomic.Int64
	sumUs  atomic.Int64
}

// New returns a tracer whose IDs start with prefix, e.g. "batch".
func New(prefix string) *Tracer {
	return &Tracer{prefix: prefix}
}

// NewID creates a random ID such as "batch_1f2e3d4c5b6a7988".
func NewID(prefix string) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return prefix + "_" + hex.EncodeToString(b)
}

// WithID returns ctx carrying id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey, id)
}

// ID extracts the trace ID from ctx, or "" when there is none.
func ID(ctx context.Context) string {
	if id, ok := ctx.Value(idKey).(string); ok {
		return id
	}
	return ""
}

// Start begins operation op. An ID already in ctx is reused. The returned
// finish func logs the outcome: errors at error level, success at info.
func (t *Tracer) Start(ctx context.Context, op string, attrs ...any) (context.Context, func(err error)) {
	id := ID(ctx)
	if id == "" {
		id = NewID(t.prefix)
		ctx = WithID(ctx, id)
	}
	start := time.Now()
	base := append([]any{"trace_id", id, applog.FieldOperation, op}, attrs...)
	slog.DebugContext(ctx, "Operation started", base...)

	return ctx, func(err error) {
		d := time.Since(start)
		t.total.Add(1)
		t.sumUs.Add(d.Microseconds())

		level := slog.LevelInfo
		fields := append(append([]any(nil), base...), applog.FieldDuration, d.Milliseconds(), "success", err == nil)
		if err != nil {
			t.failed.Add(1)
			level = slog.LevelError
			fields = append(fields, applog.FieldError, err)
		}
		slog.Log(ctx, level, "Operation completed", fields...)
	}
}

// Metrics returns a snapshot of the tracer's counters.
func (t *Tracer) Metrics() Metrics {
	m := Metrics{Total: t.total.Load(), Failed: t.failed.Load()}
	if m.Total > 0 {
		m.AverageDurationUs = t.sumUs.Load() / m.Total
	}
	return m
}
