package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQL keeps items in the kv_items table created by db.RunMigrations. It works
// with any driver sqlx can rebind placeholders for.
type SQL struct {
	db *sqlx.DB
}

func NewSQL(db *sqlx.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(`SELECT value FROM kv_items WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQL) SetItem(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO kv_items (key, value, updated_at)
	                      VALUES (?, ?, ?)
	                      ON CONFLICT (key)
	                      DO UPDATE SET
	                        value = EXCLUDED.value,
	                        updated_at = EXCLUDED.updated_at`), key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}
	return nil
}

func (s *SQL) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM kv_items WHERE key = ?`), key); err != nil {
		return fmt.Errorf("remove item %q: %w", key, err)
	}
	return nil
}
