// Package store owns the single *sql.DB connection the rest of the module
// shares, dialect detection from the engine_info configuration value, and
// the scoped-transaction helper every staging-load and report-build step
// runs inside (SPEC_FULL.md §4.8, §9 "scoped resources with guaranteed
// flush").
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"imdbdataset/internal/schema"
)

// Store wraps a *sql.DB together with the dialect it was opened under.
type Store struct {
	DB      *sql.DB
	Dialect schema.Dialect
}

// Open connects to engine_info. When engine_info contains "://" it is
// treated as a ready-made connection string for a server reachable over the
// network (Postgres, via pgx); otherwise it is treated as a bare filesystem
// path to a local, single-file embedded SQLite database, matching the
// reference project's own "give me a path, I'll manage the file" DB
// constructor.
func Open(ctx context.Context, engineInfo string) (*Store, error) {
	var driverName, dsn string
	var dialect schema.Dialect

	if strings.Contains(engineInfo, "://") {
		driverName, dsn, dialect = "pgx", engineInfo, schema.Postgres
	} else {
		driverName, dsn, dialect = "sqlite3", "file:"+engineInfo, schema.SQLite
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", engineInfo, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database %q: %w", engineInfo, err)
	}

	if dialect == schema.SQLite {
		// A pooled *sql.DB may open several connections to the same DSN; a
		// bare "file::memory:" URI gives each connection its own, separate
		// anonymous database, which silently loses writes across
		// connections. The pipeline is single-threaded and sequential
		// anyway (SPEC_FULL.md §5), so pin the pool to one connection
		// rather than requiring callers to pass cache=shared.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	return &Store{DB: db, Dialect: dialect}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// WithTx runs fn inside a new transaction: fn's return value decides commit
// (nil) vs rollback (non-nil). This is the single exit-path contract every
// staging-file load and every report-table build in this module follows —
// no silent partial commit, no flush-on-error (SPEC_FULL.md §9).
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Placeholder is a convenience forward to schema.Placeholder bound to this
// store's dialect.
func (s *Store) Placeholder(i int) string {
	return schema.Placeholder(s.Dialect, i)
}
