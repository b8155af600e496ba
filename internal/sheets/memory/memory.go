package memory

import (
	"context"
	"fmt"
	"sync"

	"finledger/internal/core"
	"finledger/internal/sheets"
)

var _ sheets.RecordWriter = (*Writer)(nil)

// Writer keeps exported rows in memory. It backs the sync worker when no
// spreadsheet is configured, and tests.
type Writer struct {
	mu   sync.Mutex
	rows [][]any
}

func New() *Writer {
	return &Writer{}
}

// AppendRecord stores the row and returns a synthetic row reference.
func (w *Writer) AppendRecord(_ context.Context, username string, r core.Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, sheets.Row(username, r))
	return fmt.Sprintf("mem:%d", len(w.rows)), nil
}

// Rows returns a copy of the appended rows.
func (w *Writer) Rows() [][]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]any, len(w.rows))
	for i, row := range w.rows {
		out[i] = append([]any(nil), row...)
	}
	return out
}
