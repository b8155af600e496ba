package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"finledger/internal/core"
	applog "finledger/internal/log"

	"github.com/shopspring/decimal"
)

const recordColumns = `id, date, category, amount, kind, description, currency`

// AddRecord stores an immutable record and returns its id.
func (s *Store) AddRecord(ctx context.Context, username string, r core.Record) (int64, error) {
	if err := ValidateUsername(username); err != nil {
		return 0, err
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.withDB(ctx, username, "add record", func(db *sql.DB) error {
		var err error
		id, err = insertRecord(ctx, db, r)
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Record saved",
		applog.FieldUser, username,
		"id", id,
		"kind", r.Kind,
		"category", r.Category,
		"amount", r.Amount.String(),
		applog.FieldCurrency, r.Currency)
	return id, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRecord(ctx context.Context, db execer, r core.Record) (int64, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO records (date, category, amount, kind, description, currency)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Date.String(), r.Category, r.Amount.String(), string(r.Kind), r.Description, r.Currency,
	)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return res.LastInsertId()
}

// GetRecord returns a single record. A missing id yields a StorageError
// wrapping core.ErrNotFound.
func (s *Store) GetRecord(ctx context.Context, username string, id int64) (core.Record, error) {
	var rec core.Record
	err := s.withDB(ctx, username, "get record", func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
		var err error
		rec, err = scanRecord(row)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		return err
	})
	return rec, err
}

// ListRecords returns every record, newest date first, ties broken by
// descending id.
func (s *Store) ListRecords(ctx context.Context, username string) ([]core.Record, error) {
	var records []core.Record
	err := s.withDB(ctx, username, "list records", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT `+recordColumns+` FROM records ORDER BY date DESC, id DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	return records, err
}

func scanRecord(sc rowScanner) (core.Record, error) {
	var (
		r      core.Record
		date   string
		amount string
		kind   string
	)
	if err := sc.Scan(&r.ID, &date, &r.Category, &amount, &kind, &r.Description, &r.Currency); err != nil {
		return core.Record{}, err
	}

	var err error
	if r.Date, err = parseStoredDate(date); err != nil {
		return core.Record{}, err
	}
	if r.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Record{}, fmt.Errorf("corrupt amount %q in record %d: %w", amount, r.ID, err)
	}
	r.Kind = core.Kind(kind)
	return r, nil
}
