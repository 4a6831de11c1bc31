// Package database opens the item store and applies its schema migrations
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/returnpoint/backend/internal/config"
	_ "modernc.org/sqlite"
)

// MigrationsTable is the table golang-migrate records applied versions in
const MigrationsTable = "schema_migrations"

// sqlitePragmas are applied to the single SQLite connection after opening
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
	"PRAGMA synchronous=NORMAL",
}

// Connect opens and pings the database selected by cfg
func Connect(cfg *config.Config) (*sql.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return openSQLite(cfg.DSN())
	case config.DriverMySQL:
		return openMySQL(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func openMySQL(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mysql connection settings are missing")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// openSQLite opens a SQLite database file. The pool is limited to one connection
// so the pragmas hold for every query and writers never contend.
func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is missing")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, p := range sqlitePragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	return db, nil
}

// MigrationsPath returns the migration source URL for a driver.
// It looks for migrations/<driver> in the working directory and then in its parents,
// so binaries and tests started from subdirectories find the same files.
func MigrationsPath(driver string) string {
	rel := filepath.Join("migrations", driver)
	for _, prefix := range []string{".", "..", filepath.Join("..", "..")} {
		candidate := filepath.Join(prefix, rel)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return "file://" + filepath.ToSlash(candidate)
		}
	}
	return "file://" + filepath.ToSlash(rel)
}

// RunMigrations applies all pending migrations from sourceURL
func RunMigrations(db *sql.DB, driver, sourceURL string) error {
	var (
		instance migratedb.Driver
		err      error
	)
	switch driver {
	case config.DriverMySQL:
		instance, err = mysql.WithInstance(db, &mysql.Config{MigrationsTable: MigrationsTable})
	case config.DriverSQLite:
		instance, err = sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: MigrationsTable})
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, driver, instance)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
