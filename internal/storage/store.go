package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finledger/internal/cache"
	"finledger/internal/core"
	applog "finledger/internal/log"

	_ "modernc.org/sqlite"
)

const dbExt = ".db"

// Options tunes a Store. Zero values fall back to sensible defaults.
type Options struct {
	// BaseCurrency is written as the base_currency setting of new namespaces.
	BaseCurrency string
	CacheSize    int
	CacheTTL     time.Duration
}

// Store keeps one SQLite database per user namespace under a data
// directory. Every call opens the namespace, acts, and closes it again.
type Store struct {
	dir          string
	baseCurrency string
	ensured      *cache.LRUCache[string, struct{}]
}

// Open prepares a Store rooted at dir, creating the directory if needed.
func Open(dir string, opts Options) (*Store, error) {
	if dir == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = "INR"
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}

	return &Store{
		dir:          dir,
		baseCurrency: strings.ToUpper(opts.BaseCurrency),
		ensured:      cache.NewLRUCache[string, struct{}](opts.CacheSize, opts.CacheTTL),
	}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// NamespaceCache exposes the ensured-namespace cache so a cache.Manager
// can sweep it.
func (s *Store) NamespaceCache() cache.Cleaner { return s.ensured }

// Path returns the database file of a namespace.
func (s *Store) Path(username string) string {
	return filepath.Join(s.dir, username+dbExt)
}

func dsn(path string) string {
	return path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)"
}

// EnsureNamespace creates and migrates the namespace database for
// username. It is idempotent.
func (s *Store) EnsureNamespace(ctx context.Context, username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if _, ok := s.ensured.Get(username); ok {
		return nil
	}

	path := s.Path(username)
	version, err := RunMigrations(path)
	if err != nil {
		return &core.StorageError{Op: "ensure namespace", Err: err}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return &core.StorageError{Op: "ensure namespace", Err: err}
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		core.SettingBaseCurrency, s.baseCurrency,
	); err != nil {
		return &core.StorageError{Op: "ensure namespace", Err: err}
	}

	s.ensured.Set(username, struct{}{})
	slog.DebugContext(ctx, "Namespace ready", applog.FieldUser, username, "path", path, "schema_version", version)
	return nil
}

// ListNamespaces returns the usernames that have a database in the data
// directory, sorted by name.
func (s *Store) ListNamespaces(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &core.StorageError{Op: "list namespaces", Err: err}
	}

	var users []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), dbExt) {
			continue
		}
		user := strings.TrimSuffix(e.Name(), dbExt)
		if ValidateUsername(user) != nil {
			slog.WarnContext(ctx, "Skipping file with invalid namespace name", "file", e.Name())
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Store) withDB(ctx context.Context, username, op string, fn func(*sql.DB) error) error {
	if err := s.EnsureNamespace(ctx, username); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dsn(s.Path(username)))
	if err != nil {
		return &core.StorageError{Op: op, Err: err}
	}
	defer db.Close()

	return wrapErr(op, fn(db))
}

func (s *Store) withTx(ctx context.Context, username, op string, fn func(*sql.Tx) error) error {
	return s.withDB(ctx, username, op, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	})
}

// wrapErr turns raw driver errors into StorageErrors and passes typed
// domain errors through.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		nsErr  *core.NamespaceError
		valErr *core.ValidationError
		stErr  *core.StorageError
	)
	if errors.As(err, &nsErr) || errors.As(err, &valErr) || errors.As(err, &stErr) {
		return err
	}
	return &core.StorageError{Op: op, Err: err}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func parseStoredDate(s string) (core.Date, error) {
	t, err := time.Parse(core.DateFormat, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("corrupt date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}
