package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseURLEnv overrides database.url when set.
const DatabaseURLEnv = "FINANCE_DB_URL"

// DefaultDatabaseURL is used when neither the config file nor the environment names a database.
const DefaultDatabaseURL = "sqlite://$HOME/.local/share/finance/finance.db"

// Supported database dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Config is the resolved application configuration.
type Config struct {
	Env       string
	LogLevel  string
	LogFormat string
	UserName  string
	Theme     string
	Database  Database
}

// Database describes where the entity store lives.
type Database struct {
	// URL is the configured value after environment overrides.
	URL     string
	Dialect string
	// DSN is the driver-ready source: an absolute file path for SQLite,
	// the connection URL for PostgreSQL.
	DSN  string
	Echo bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("database.url", DefaultDatabaseURL)
	v.SetDefault("database.echo", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("user.name", "demo")
	v.SetDefault("dashboard.theme", "default")
}

// LoadDotEnv loads environment variables from the given .env files.
// Missing files are ignored; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		err := godotenv.Load(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration held by v. Relative SQLite paths are
// resolved against the directory of the config file in use, or the
// working directory when no file was read.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:       v.GetString("app.env"),
		LogLevel:  v.GetString("logging.level"),
		LogFormat: v.GetString("logging.format"),
		UserName:  strings.TrimSpace(v.GetString("user.name")),
		Theme:     v.GetString("dashboard.theme"),
	}
	if cfg.UserName == "" {
		return nil, fmt.Errorf("%w: user.name must not be empty", common.ErrInvalidConfig)
	}

	raw := v.GetString("database.url")
	if env := strings.TrimSpace(os.Getenv(DatabaseURLEnv)); env != "" {
		raw = env
	}

	baseDir := ""
	if used := v.ConfigFileUsed(); used != "" {
		baseDir = filepath.Dir(used)
	}

	db, err := ParseDatabaseURL(raw, baseDir)
	if err != nil {
		return nil, err
	}
	db.Echo = v.GetBool("database.echo")
	cfg.Database = db

	return cfg, nil
}

// ParseDatabaseURL turns a configured database URL into a dialect and DSN.
//
// Accepted forms are sqlite:///abs/path.db, sqlite://relative.db, a bare
// file path (SQLite) and postgres:// or postgresql:// URLs.
func ParseDatabaseURL(raw, baseDir string) (Database, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Database{}, fmt.Errorf("%w: database.url is empty", common.ErrInvalidConfig)
	}

	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return Database{URL: raw, Dialect: DialectPostgres, DSN: raw}, nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		// sqlite:///./finance.db names a path relative to the base directory.
		if strings.HasPrefix(path, "/./") || strings.HasPrefix(path, "/../") {
			path = path[1:]
		}
		return sqliteDatabase(raw, path, baseDir)
	case strings.Contains(raw, "://"):
		return Database{}, fmt.Errorf("%w: unsupported database url %q", common.ErrInvalidConfig, raw)
	}
	return sqliteDatabase(raw, raw, baseDir)
}

func sqliteDatabase(raw, path, baseDir string) (Database, error) {
	if strings.TrimSpace(ExpandPath(path)) == "" {
		return Database{}, fmt.Errorf("%w: sqlite url %q has no path", common.ErrInvalidConfig, raw)
	}
	if path == ":memory:" {
		return Database{URL: raw, Dialect: DialectSQLite, DSN: path}, nil
	}

	resolved, err := ResolvePath(path, baseDir)
	if err != nil {
		return Database{}, err
	}
	return Database{URL: raw, Dialect: DialectSQLite, DSN: resolved}, nil
}
