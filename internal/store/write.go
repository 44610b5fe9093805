package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Put stores value under key, replacing any previous value.
// Each call advances the write counter, even when the bytes are unchanged;
// callers that want to avoid churn compare before writing.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.withWrite(ctx, "put "+key, func(tx *sql.Tx, seq int64) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv (key, value, seq) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, seq = excluded.seq
		`, key, string(value), seq)
		return err
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.withWrite(ctx, "delete "+key, func(tx *sql.Tx, _ int64) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
		return err
	})
}

// withWrite runs fn inside a transaction after bumping the write counter.
func (s *Store) withWrite(ctx context.Context, op string, fn func(tx *sql.Tx, seq int64) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`UPDATE counters SET value = value + 1 WHERE name = 'writes' RETURNING value`,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("%s: bump counter: %w", op, err)
	}

	if err := fn(tx, seq); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}
