package epoch

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed snapshot metadata store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the metadata table if it doesn't exist. The upstream
// batch job normally owns this table; creating it here only keeps a fresh
// deployment from failing before the first snapshot lands.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS dataset_epoch (
			epoch TEXT PRIMARY KEY
		)`)
	return err
}

// Latest returns the newest epoch identifier, or ErrNoEpoch if the metadata
// table is empty.
func (s *PgStore) Latest(ctx context.Context) (Epoch, error) {
	var e string
	err := s.pool.QueryRow(ctx, `SELECT epoch FROM dataset_epoch ORDER BY epoch DESC LIMIT 1`).Scan(&e)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoEpoch
	}
	if err != nil {
		return "", fmt.Errorf("latest epoch: %w", err)
	}
	return Epoch(e), nil
}
