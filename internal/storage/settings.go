package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"finledger/internal/core"
)

// GetSetting reads a namespace setting. ok is false when the key is unset.
func (s *Store) GetSetting(ctx context.Context, username, key string) (value string, ok bool, err error) {
	err = s.withDB(ctx, username, "get setting", func(db *sql.DB) error {
		err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		return nil
	})
	return value, ok, err
}

// SetSetting inserts or overwrites a namespace setting.
func (s *Store) SetSetting(ctx context.Context, username, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return &core.ValidationError{Field: "setting", Reason: "key is required"}
	}
	return s.withDB(ctx, username, "set setting", func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value)
		return err
	})
}

// BaseCurrency returns the namespace's reporting currency, or the store
// default when the setting is missing.
func (s *Store) BaseCurrency(ctx context.Context, username string) (string, error) {
	v, ok, err := s.GetSetting(ctx, username, core.SettingBaseCurrency)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return s.baseCurrency, nil
	}
	return v, nil
}

// SetBaseCurrency stores the reporting currency, upper-cased. Checking
// that the code is known is left to the caller.
func (s *Store) SetBaseCurrency(ctx context.Context, username, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return &core.ValidationError{Field: "currency", Reason: "code is required"}
	}
	return s.SetSetting(ctx, username, core.SettingBaseCurrency, code)
}
