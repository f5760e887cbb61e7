package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS kv_items (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const postgresAlters = `
DO $$ BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns WHERE table_name='users' AND column_name='language'
    ) THEN
        ALTER TABLE users ADD COLUMN language TEXT;
    END IF;
END $$;`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS kv_items (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// RunMigrations applies the schema for the connection's driver. It is safe to
// run on every start.
func RunMigrations(db *sqlx.DB) error {
	ctx := context.Background()
	switch db.DriverName() {
	case DriverPostgres:
		if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
			return err
		}
		_, err := db.ExecContext(ctx, postgresAlters)
		return err
	case DriverSQLite:
		if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
			return err
		}
		return ensureSQLiteColumn(ctx, db, "users", "language", "TEXT")
	default:
		return fmt.Errorf("unsupported driver %q", db.DriverName())
	}
}

// ensureSQLiteColumn adds a column when an older database file lacks it.
func ensureSQLiteColumn(ctx context.Context, db *sqlx.DB, table, column, typ string) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		if strings.EqualFold(name, column) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	_, err = db.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, typ))
	if err != nil {
		return fmt.Errorf("add %s.%s: %w", table, column, err)
	}
	return nil
}
