package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore shares counters across instances through a single atomic
// upsert, the swap-in backing store for multi-instance deployments. Unlike
// MemoryStore it counts rejected requests too; the window outcome is the
// same and the statement stays race-free without a transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection pool. The rate_limits table is
// created by the goose migrations.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Take implements Store. Expired windows are reset in the same statement
// that increments, so concurrent callers serialize on the row.
func (s *PostgresStore) Take(ctx context.Context, identity string, p Policy, now time.Time) (Entry, bool, error) {
	query := `
		INSERT INTO rate_limits (identity, count, reset_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (identity) DO UPDATE SET
			count = CASE WHEN rate_limits.reset_at <= $3 THEN 1 ELSE rate_limits.count + 1 END,
			reset_at = CASE WHEN rate_limits.reset_at <= $3 THEN $2 ELSE rate_limits.reset_at END
		RETURNING count, reset_at;
	`

	var entry Entry
	err := s.db.QueryRowContext(ctx, query, identity, now.Add(p.Window), now).
		Scan(&entry.Count, &entry.ResetAt)
	if err != nil {
		return Entry{}, false, fmt.Errorf("rate limit upsert: %w", err)
	}

	return entry, entry.Count <= p.Limit, nil
}
