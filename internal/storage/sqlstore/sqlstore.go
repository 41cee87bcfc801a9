// Package sqlstore provides a database/sql implementation of the storage.Store
// interface for SQLite (pure Go driver) and PostgreSQL (pgx).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/splitledger/internal/ledgererr"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
)

type dialect struct {
	name string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
	// options for transactions that write ledger rows
	writeOpts *sql.TxOptions
	// options for snapshot reads
	readOpts *sql.TxOptions
}

var (
	sqliteDialect = dialect{name: DriverSQLite}

	postgresDialect = dialect{
		name:      DriverPostgres,
		numbered:  true,
		writeOpts: &sql.TxOptions{Isolation: sql.LevelRepeatableRead},
		readOpts:  &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true},
	}
)

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func (d dialect) isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgSerializationFailure
}

// Store implements storage.Store on top of database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// New creates a SQLite-backed Store with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	return Open(context.Background(), DriverSQLite, dbPath)
}

// Open connects to the database and runs migrations.
// For DriverSQLite dsn is a file path; for DriverPostgres it is a connection URL.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		db  *sql.DB
		d   dialect
		err error
	)

	switch driver {
	case DriverSQLite:
		// Create parent directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		db, err = sql.Open("sqlite", "file:"+dsn+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
		d = sqliteDialect
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		d = postgresDialect
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, dialect: d}
	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Driver returns the name of the SQL dialect in use.
func (s *Store) Driver() string {
	return s.dialect.name
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn runs rebound queries against a database or a transaction.
type conn struct {
	q querier
	d dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.d.rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.d.rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.d.rebind(query), args...)
}

func (s *Store) conn() conn {
	return conn{q: s.db, d: s.dialect}
}

// withTx runs fn inside a transaction and commits if fn returns nil.
func (s *Store) withTx(ctx context.Context, opts *sql.TxOptions, fn func(c conn) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return ledgererr.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(conn{q: tx, d: s.dialect}); err != nil {
		return s.classify(err)
	}

	if err := tx.Commit(); err != nil {
		return s.classify(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// classify turns driver errors into ledger errors. Errors that already carry
// a ledger kind pass through unchanged.
func (s *Store) classify(err error) error {
	if ledgererr.KindOf(err) != ledgererr.KindUnknown {
		return err
	}
	if s.dialect.isSerializationFailure(err) {
		return &ledgererr.Error{
			Kind:    ledgererr.KindState,
			Code:    ledgererr.LedgerChanged,
			Message: "the group ledger was modified concurrently",
			Err:     err,
		}
	}
	return ledgererr.Storage("database error", err)
}

// bumpRevision increments the group's ledger revision, which also takes the
// row lock that orders concurrent ledger writes on PostgreSQL.
func bumpRevision(ctx context.Context, c conn, groupID string) error {
	res, err := c.exec(ctx, "UPDATE groups SET revision = revision + 1 WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to update group revision: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update group revision: %w", err)
	}
	if n == 0 {
		return ledgererr.Reference(ledgererr.NotFound, "group_id", "group not found: %s", groupID)
	}
	return nil
}
