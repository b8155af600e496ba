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

const ruleColumns = `id, category, amount, kind, description, frequency, start_date, next_due, currency`

// AddRecurringRule stores a rule whose next due date is its start date.
func (s *Store) AddRecurringRule(ctx context.Context, username string, rule core.RecurringRule) (int64, error) {
	if err := ValidateUsername(username); err != nil {
		return 0, err
	}
	if err := rule.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.withDB(ctx, username, "add recurring rule", func(db *sql.DB) error {
		res, err := db.ExecContext(ctx,
			`INSERT INTO recurring_rules
			   (category, amount, kind, description, frequency, start_date, next_due, currency)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rule.Category, rule.Amount.String(), string(rule.Kind), rule.Description,
			string(rule.Frequency), rule.StartDate.String(), rule.StartDate.String(), rule.Currency,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Recurring rule saved",
		applog.FieldUser, username,
		"id", id,
		"frequency", rule.Frequency,
		"start_date", rule.StartDate.String())
	return id, nil
}

// ListRecurringRules returns every rule ordered by next due date, ties by id.
func (s *Store) ListRecurringRules(ctx context.Context, username string) ([]core.RecurringRule, error) {
	var rules []core.RecurringRule
	err := s.withDB(ctx, username, "list recurring rules", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT `+ruleColumns+` FROM recurring_rules ORDER BY next_due ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rule, err := scanRule(rows)
			if err != nil {
				return err
			}
			rules = append(rules, rule)
		}
		return rows.Err()
	})
	return rules, err
}

// UpdateRuleNextDue moves a rule's next due date forward. Moving it
// backwards is rejected.
func (s *Store) UpdateRuleNextDue(ctx context.Context, username string, ruleID int64, next core.Date) error {
	return s.withTx(ctx, username, "update rule next due", func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT next_due FROM recurring_rules WHERE id = ?`, ruleID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return err
		}
		if next.String() < current {
			return &core.ValidationError{
				Field:  "next_due",
				Reason: fmt.Sprintf("cannot move back from %s to %s", current, next),
			}
		}
		_, err = tx.ExecContext(ctx, `UPDATE recurring_rules SET next_due = ? WHERE id = ?`, next.String(), ruleID)
		return err
	})
}

// MaterializeRule inserts rec and advances the rule from due to next in
// one transaction. The advance only applies while next_due still equals
// due; otherwise ErrStaleRule is returned and nothing is written.
func (s *Store) MaterializeRule(ctx context.Context, username string, rec core.Record, ruleID int64, due, next core.Date) (int64, error) {
	if err := ValidateUsername(username); err != nil {
		return 0, err
	}
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	if next.Before(due) {
		return 0, &core.ValidationError{
			Field:  "next_due",
			Reason: fmt.Sprintf("cannot move back from %s to %s", due, next),
		}
	}

	var id int64
	err := s.withTx(ctx, username, "materialize rule", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE recurring_rules SET next_due = ? WHERE id = ? AND next_due = ?`,
			next.String(), ruleID, due.String(),
		)
		if err != nil {
			return fmt.Errorf("advance rule: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrStaleRule
		}

		id, err = insertRecord(ctx, tx, rec)
		return err
	})
	return id, err
}

func scanRule(sc rowScanner) (core.RecurringRule, error) {
	var (
		r                  core.RecurringRule
		amount, kind, freq string
		startDate, nextDue string
	)
	if err := sc.Scan(&r.ID, &r.Category, &amount, &kind, &r.Description, &freq, &startDate, &nextDue, &r.Currency); err != nil {
		return core.RecurringRule{}, err
	}

	var err error
	if r.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.RecurringRule{}, fmt.Errorf("corrupt amount %q in rule %d: %w", amount, r.ID, err)
	}
	if r.StartDate, err = parseStoredDate(startDate); err != nil {
		return core.RecurringRule{}, err
	}
	if r.NextDue, err = parseStoredDate(nextDue); err != nil {
		return core.RecurringRule{}, err
	}
	r.Kind = core.Kind(kind)
	r.Frequency = core.Frequency(freq)
	return r, nil
}
