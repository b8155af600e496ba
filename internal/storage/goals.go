package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finledger/internal/core"

	"github.com/shopspring/decimal"
)

func validateGoalAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &core.ValidationError{Field: "goal", Reason: "cannot be negative"}
	}
	return nil
}

// AppendGoalEntry adds a row to the goal history.
func (s *Store) AppendGoalEntry(ctx context.Context, username string, date core.Date, amount decimal.Decimal) error {
	if err := validateGoalAmount(amount); err != nil {
		return err
	}
	return s.withDB(ctx, username, "append goal entry", func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO goal_history (date, amount) VALUES (?, ?)`,
			date.String(), amount.String())
		return err
	})
}

// ReplaceCurrentGoal makes (date, amount) the only current goal.
func (s *Store) ReplaceCurrentGoal(ctx context.Context, username string, date core.Date, amount decimal.Decimal) error {
	if err := validateGoalAmount(amount); err != nil {
		return err
	}
	return s.withTx(ctx, username, "replace current goal", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM current_goal`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO current_goal (id, date, amount) VALUES (1, ?, ?)`,
			date.String(), amount.String())
		return err
	})
}

// CurrentGoal returns the current goal, and false when none has been set.
func (s *Store) CurrentGoal(ctx context.Context, username string) (core.GoalEntry, bool, error) {
	var (
		goal  core.GoalEntry
		found bool
	)
	err := s.withDB(ctx, username, "current goal", func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `SELECT id, date, amount FROM current_goal LIMIT 1`)
		var err error
		goal, err = scanGoal(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return goal, found, err
}

// ListGoalEntries returns the goal history in date order.
func (s *Store) ListGoalEntries(ctx context.Context, username string) ([]core.GoalEntry, error) {
	var entries []core.GoalEntry
	err := s.withDB(ctx, username, "list goal entries", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT id, date, amount FROM goal_history ORDER BY date ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			g, err := scanGoal(rows)
			if err != nil {
				return err
			}
			entries = append(entries, g)
		}
		return rows.Err()
	})
	return entries, err
}

// ListGoalDates returns the distinct days on which a goal was set,
// ascending.
func (s *Store) ListGoalDates(ctx context.Context, username string) ([]core.Date, error) {
	var dates []core.Date
	err := s.withDB(ctx, username, "list goal dates", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT DISTINCT date FROM goal_history ORDER BY date ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var raw string
			if err := rows.Scan(&raw); err != nil {
				return err
			}
			d, err := parseStoredDate(raw)
			if err != nil {
				return err
			}
			dates = append(dates, d)
		}
		return rows.Err()
	})
	return dates, err
}

func scanGoal(sc rowScanner) (core.GoalEntry, error) {
	var (
		g            core.GoalEntry
		date, amount string
	)
	if err := sc.Scan(&g.ID, &date, &amount); err != nil {
		return core.GoalEntry{}, err
	}

	var err error
	if g.Date, err = parseStoredDate(date); err != nil {
		return core.GoalEntry{}, err
	}
	if g.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.GoalEntry{}, fmt.Errorf("corrupt goal amount %q: %w", amount, err)
	}
	return g, nil
}
