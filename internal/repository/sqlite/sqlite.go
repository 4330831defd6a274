// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// CONNECTION MODEL:
// The pool is capped at a single open connection. SQLite serialises writers
// anyway, and with one connection every transaction (and every ":memory:"
// test database) sees the same session. The catch: inside WithinTx, every
// statement must go through the transaction's repositories, or it will wait
// forever for the connection the transaction is holding.
//
// TIME COLUMNS:
// Booking bounds and creation instants are stored as INTEGER Unix nanoseconds
// in UTC. Every temporal filter is then a plain integer comparison.
package sqlite

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/shareit/internal/repository"
)

var _ repository.Store = (*DB)(nil)

func init() {
	// casefold lower-cases with Go's Unicode tables. SQLite's built-in lower()
	// only folds ASCII, which would make search miss non-Latin names.
	msqlite.MustRegisterDeterministicScalarFunction("casefold", 1,
		func(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

// DB is the SQLite-backed store. q is either the pool or, inside WithinTx,
// the open transaction.
type DB struct {
	conn *sqlx.DB
	q    sqlx.ExtContext
}

// New opens (or creates) the database at dbPath and brings the schema up to date.
//
// dbPath examples:
//   - "data/shareit.db" → file-based database (persistent)
//   - ":memory:"        → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if err := migrateUp(conn.DB); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return &DB{conn: conn, q: conn}, nil
}

// dsn appends connection pragmas. They travel with the DSN so that a
// reconnected session gets them too.
func dsn(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		pragmas = "_pragma=journal_mode(WAL)&" + pragmas
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + pragmas
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// WithinTx runs fn in a transaction. A nested call reuses the open transaction.
func (db *DB) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	if _, inTx := db.q.(*sqlx.Tx); inTx {
		return fn(db)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op returning sql.ErrTxDone.
	defer func() { _ = tx.Rollback() }()

	if err := fn(&DB{conn: db.conn, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// limitArgs turns ListOptions into LIMIT/OFFSET arguments. A non-positive
// limit means "no limit", which SQLite spells as -1.
func limitArgs(opts repository.ListOptions) (int, int) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func isUniqueViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE")
}

func isForeignKeyViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY")
}

// isConstraint matches the extended result code, falling back to the primary
// code plus message text when extended codes are not reported.
func isConstraint(err error, extended int, text string) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.Code() == extended {
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), text)
}

func toNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
