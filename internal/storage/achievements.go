package storage

import (
	"context"
	"database/sql"
	"strings"

	"finledger/internal/core"
)

// UnlockAchievementIfAbsent records the achievement unless one with the
// same name exists. It reports whether a new row was written.
func (s *Store) UnlockAchievementIfAbsent(ctx context.Context, username, name string, date core.Date) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, &core.ValidationError{Field: "achievement", Reason: "name is required"}
	}

	var inserted bool
	err := s.withDB(ctx, username, "unlock achievement", func(db *sql.DB) error {
		res, err := db.ExecContext(ctx,
			`INSERT INTO achievements (name, date) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
			name, date.String())
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = n > 0
		return nil
	})
	return inserted, err
}

// ListAchievements returns unlocked achievements, oldest first.
func (s *Store) ListAchievements(ctx context.Context, username string) ([]core.Achievement, error) {
	var out []core.Achievement
	err := s.withDB(ctx, username, "list achievements", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT id, name, date FROM achievements ORDER BY date ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				a    core.Achievement
				date string
			)
			if err := rows.Scan(&a.ID, &a.Name, &date); err != nil {
				return err
			}
			if a.Date, err = parseStoredDate(date); err != nil {
				return err
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	return out, err
}
