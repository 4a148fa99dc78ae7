// Package storage provides the data persistence layer for the finance tracker.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/mattn/go-sqlite3"
)

// Dialect names the SQL flavour behind a store.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

var (
	_ service.Storage     = (*SQLStorage)(nil)
	_ service.Transaction = (*sqlTransaction)(nil)
)

// Options tune how a store is opened.
type Options struct {
	// Echo logs every statement at debug level.
	Echo bool
}

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStorage implements service.Storage on database/sql.
type SQLStorage struct {
	db      *sql.DB
	q       queryable
	dsn     string
	dialect Dialect
	echo    bool
}

// Open connects to the store named by dialect and dsn. For SQLite the dsn
// is a file path (or ":memory:"); for PostgreSQL it is a connection URL.
func Open(ctx context.Context, dialect Dialect, dsn string, opts Options) (*SQLStorage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(dsn, "dsn"); err != nil {
		return nil, err
	}

	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectSQLite:
		db, err = openSQLite(dsn)
	case DialectPostgres:
		db, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("%w: unsupported dialect %q", common.ErrInvalidConfig, dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLStorage{
		db:      db,
		q:       db,
		dsn:     dsn,
		dialect: dialect,
		echo:    opts.Echo,
	}, nil
}

// NewSQLiteStorage opens (creating if needed) a SQLite database file.
func NewSQLiteStorage(dbPath string) (*SQLStorage, error) {
	return Open(context.Background(), DialectSQLite, dbPath, Options{})
}

func openSQLite(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// A single connection keeps the foreign_keys pragma and :memory: databases consistent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// Dialect reports which SQL flavour the store speaks.
func (s *SQLStorage) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection.
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqlTransaction{
		SQLStorage: &SQLStorage{
			db:      s.db,
			q:       tx,
			dsn:     s.dsn,
			dialect: s.dialect,
			echo:    s.echo,
		},
		tx: tx,
	}, nil
}

// sqlTransaction runs every Storage method against an open *sql.Tx.
type sqlTransaction struct {
	*SQLStorage
	tx *sql.Tx
}

func (t *sqlTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqlTransaction) Migrate(_ context.Context) error {
	return fmt.Errorf("cannot run migrations within a transaction")
}

func (t *sqlTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqlTransaction) Close() error {
	return nil
}

func (s *SQLStorage) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	query = s.prepare(query, args)
	res, err := s.q.ExecContext(ctx, query, args...)
	return res, mapError(err)
}

func (s *SQLStorage) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	query = s.prepare(query, args)
	rows, err := s.q.QueryContext(ctx, query, args...)
	return rows, mapError(err)
}

func (s *SQLStorage) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.prepare(query, args), args...)
}

func (s *SQLStorage) prepare(query string, args []any) string {
	query = rebind(s.dialect, query)
	if s.echo {
		slog.Debug("sql", "query", strings.Join(strings.Fields(query), " "), "args", args)
	}
	return query
}

// rebind rewrites ? placeholders into PostgreSQL's $n form.
func rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
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

// mapError translates driver constraint violations into common sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", common.ErrDuplicateEntry, err)
		default:
			return fmt.Errorf("%w: %v", common.ErrIntegrity, err)
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %v", common.ErrDuplicateEntry, err)
		case "23503", "23502", "23514", "23P01":
			return fmt.Errorf("%w: %v", common.ErrIntegrity, err)
		}
	}

	return err
}

// rowsAffected reports ErrNotFound when a write touched nothing.
func rowsAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return common.NotFoundf("%s %s", what, id)
	}
	return nil
}
