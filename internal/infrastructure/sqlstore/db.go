package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported database drivers
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

//go:embed migrations
var migrationFiles embed.FS

// DB wraps a connection pool together with the SQL dialect it speaks
type DB struct {
	*sql.DB
	Driver string
}

// Open connects to the relational store and verifies it is reachable
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	if driver != DriverSQLite && driver != DriverPgx {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// one writer; in-memory databases also live on a single connection
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return &DB{DB: sqlDB, Driver: driver}, nil
}

// Migrate applies every pending schema migration for the store's dialect
func Migrate(db *DB) error {
	dir := "migrations/sqlite"
	var (
		driver database.Driver
		err    error
	)

	switch db.Driver {
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	case DriverPgx:
		dir = "migrations/postgres"
		driver, err = migratepgx.WithInstance(db.DB, &migratepgx.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", db.Driver)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.Driver, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	// m.Close is not called: it would close the shared *sql.DB

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders into the dialect's positional form
func (db *DB) rebind(query string) string {
	if db.Driver != DriverPgx {
		return query
	}

	var b strings.Builder
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
