package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrStorageUnavailable is returned when the store cannot be opened or read.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Options tune how the store is read.
type Options struct {
	// CaseSensitive turns on PRAGMA case_sensitive_like for substring filters.
	// SQLite's default LIKE folds ASCII case.
	CaseSensitive bool
}

// DB is a read-only handle on a faktajouren SQLite file. It holds no
// connection; every operation opens the file, reads and closes it again.
type DB struct {
	path string
	opts Options
}

// Open checks that dbPath is a readable SQLite file with the expected
// faktajouren schema and returns a handle on it.
func Open(dbPath string, opts Options) (*DB, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %v", ErrStorageUnavailable, dbPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrStorageUnavailable, abs)
	}

	db := &DB{path: abs, opts: opts}
	err = db.withConn(context.Background(), func(conn *sql.DB) error {
		return checkSchema(conn)
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// withConn opens a single read-only connection for the duration of fn.
func (db *DB) withConn(ctx context.Context, fn func(conn *sql.DB) error) error {
	// Escape the path so '?' or '#' in a directory name stays part of it.
	dsn := (&url.URL{Scheme: "file", Path: db.path, RawQuery: "mode=ro"}).String()
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("%w: opening database: %v", ErrStorageUnavailable, err)
	}
	defer conn.Close()

	// Pragmas are per connection, so keep exactly one.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return fmt.Errorf("%w: setting query_only: %v", ErrStorageUnavailable, err)
	}
	if db.opts.CaseSensitive {
		if _, err := conn.ExecContext(ctx, "PRAGMA case_sensitive_like = ON"); err != nil {
			return fmt.Errorf("%w: setting case_sensitive_like: %v", ErrStorageUnavailable, err)
		}
	}

	return fn(conn)
}
