package sheets

import (
	"context"

	"finledger/internal/core"
)

// Columns is the header of the exported ledger sheet.
var Columns = []string{"User", "Date", "Kind", "Category", "Amount", "Currency", "Description"}

// Ports for outbound adapters.
type (
	// RecordWriter appends a user's record as one spreadsheet row.
	RecordWriter interface {
		AppendRecord(ctx context.Context, username string, r core.Record) (rowRef string, err error)
	}
)

// Row renders a record in Columns order.
func Row(username string, r core.Record) []any {
	return []any{
		username,
		r.Date.String(),
		string(r.Kind),
		r.Category,
		r.Amount.StringFixed(2),
		r.Currency,
		r.Description,
	}
}
