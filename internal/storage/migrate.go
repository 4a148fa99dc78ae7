package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ExpectedSchemaVersion is the latest migration version shipped with the binary.
const ExpectedSchemaVersion = 2

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Migrations run on their own connection so that closing the migrator
	// leaves the store open. In-memory SQLite databases exist only on the
	// store's connection, so they share it.
	shared := s.dialect == DialectSQLite && s.dsn == ":memory:"
	db := s.db
	if !shared {
		var err error
		switch s.dialect {
		case DialectSQLite:
			db, err = openSQLite(s.dsn)
		case DialectPostgres:
			db, err = sql.Open("pgx", s.dsn)
		}
		if err != nil {
			return fmt.Errorf("open migration database: %w", err)
		}
	}

	m, err := s.newMigrator(db)
	if err != nil {
		if !shared {
			_ = db.Close()
		}
		return err
	}
	if !shared {
		defer func() {
			if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
				slog.Warn("failed to close migrator", "source_error", srcErr, "database_error", dbErr)
			}
		}()
	}

	before, _, _ := m.Version()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	after, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty", after)
	}
	if after != before {
		slog.Info("applied migrations", "dialect", s.dialect, "from", before, "to", after)
	}
	return nil
}

// SchemaVersion reports the applied migration version.
func (s *SQLStorage) SchemaVersion(ctx context.Context) (uint, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int64
	err := s.queryRow(ctx, `SELECT version FROM schema_migrations LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return uint(version), nil
}

func (s *SQLStorage) newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		name   string
		err    error
	)
	switch s.dialect {
	case DialectSQLite:
		name = "sqlite3"
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case DialectPostgres:
		name = "pgx5"
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		return nil, fmt.Errorf("unsupported dialect %q", s.dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s migration driver: %w", s.dialect, err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+string(s.dialect))
	if err != nil {
		return nil, fmt.Errorf("locate migrations: %w", err)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, name, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}
