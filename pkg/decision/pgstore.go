package decision

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"factloop/pkg/epoch"
)

// historyTable records decisions across all snapshots.
const historyTable = "all_logging_history"

// PgStore is a PostgreSQL-backed decision log.
type PgStore struct {
	pool   *pgxpool.Pool
	prefix string
}

// NewPgStore creates a PgStore. prefix matches the candidate table family so
// the per-snapshot log lands next to its candidate table.
func NewPgStore(pool *pgxpool.Pool, prefix string) *PgStore {
	return &PgStore{pool: pool, prefix: prefix}
}

// EnsureHistoryTable creates the cross-snapshot history table if needed.
func (s *PgStore) EnsureHistoryTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, createTableSQL(pgx.Identifier{historyTable}.Sanitize()))
	return err
}

// EnsureLogTable creates the snapshot-scoped log table if needed.
func (s *PgStore) EnsureLogTable(ctx context.Context, ep epoch.Epoch) error {
	if !ep.Valid() {
		return fmt.Errorf("invalid epoch identifier %q", ep)
	}
	_, err := s.pool.Exec(ctx, createTableSQL(pgx.Identifier{ep.LogTable(s.prefix)}.Sanitize()))
	return err
}

// Log upserts the decision into the snapshot-scoped log table and the global
// history table within one transaction, so the two can never diverge.
// Re-logging the same key overwrites decision and change time in place.
func (s *PgStore) Log(ctx context.Context, ep epoch.Epoch, player, qNumber string, d Decision) error {
	if !ep.Valid() {
		return fmt.Errorf("invalid epoch identifier %q", ep)
	}
	now := time.Now().Truncate(time.Microsecond)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	logTable := pgx.Identifier{ep.LogTable(s.prefix)}.Sanitize()
	if _, err := tx.Exec(ctx, upsertSQL(logTable), player, qNumber, string(d), now); err != nil {
		return fmt.Errorf("upsert epoch log: %w", err)
	}
	history := pgx.Identifier{historyTable}.Sanitize()
	if _, err := tx.Exec(ctx, upsertSQL(history), player, qNumber, string(d), now); err != nil {
		return fmt.Errorf("upsert history log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit decision: %w", err)
	}
	return nil
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			username    TEXT NOT NULL,
			q_number    TEXT NOT NULL,
			decision    TEXT NOT NULL,
			change_time TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (username, q_number)
		)`, table)
}

func upsertSQL(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (username, q_number, decision, change_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username, q_number)
		DO UPDATE SET decision = EXCLUDED.decision, change_time = EXCLUDED.change_time`, table)
}
