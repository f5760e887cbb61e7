package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Open connects to Postgres when databaseURL is set and to a local SQLite
// file otherwise, then applies the schema.
func Open(databaseURL, sqlitePath string) (*sqlx.DB, error) {
	if databaseURL != "" {
		conn, err := sqlx.Open(DriverPostgres, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		conn.SetMaxOpenConns(10)
		conn.SetConnMaxLifetime(2 * time.Hour)
		return prepare(conn)
	}

	if dir := filepath.Dir(sqlitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	return OpenSQLite(fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqlitePath))
}

// OpenSQLite opens a SQLite DSN. Use "file::memory:" in tests.
func OpenSQLite(dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer keeps SQLite from returning SQLITE_BUSY and keeps
	// in-memory databases on one connection
	conn.SetMaxOpenConns(1)
	return prepare(conn)
}

func prepare(conn *sqlx.DB) (*sqlx.DB, error) {
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", conn.DriverName(), err)
	}
	if err := RunMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return conn, nil
}
