package candidate

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"factloop/pkg/epoch"
)

// DefaultOverfetch is the ratio of rows fetched per tile requested. The
// overfetch compensates for rows later discarded by the claim check or the
// served-set check, without a second round trip.
const DefaultOverfetch = 5

// PgStore is a PostgreSQL-backed candidate store reading the per-snapshot
// tables written by the upstream batch job.
type PgStore struct {
	pool      *pgxpool.Pool
	prefix    string
	overfetch int
}

// NewPgStore creates a PgStore. prefix names the candidate table family
// ("candidates" yields candidates_<epoch>). overfetch <= 0 selects
// DefaultOverfetch.
func NewPgStore(pool *pgxpool.Pool, prefix string, overfetch int) *PgStore {
	if overfetch <= 0 {
		overfetch = DefaultOverfetch
	}
	return &PgStore{pool: pool, prefix: prefix, overfetch: overfetch}
}

// Fetch queries the preferred-language pool first and falls back to the
// any-language pool only when the preferred pool is exhausted, mirroring how
// players are steered toward their primary language.
func (s *PgStore) Fetch(ctx context.Context, ep epoch.Epoch, limit int, lang string, exclude []string) ([]Row, error) {
	if !ep.Valid() {
		return nil, fmt.Errorf("invalid epoch identifier %q", ep)
	}
	if exclude == nil {
		exclude = []string{}
	}
	table := pgx.Identifier{ep.CandidateTable(s.prefix)}.Sanitize()
	pattern := "%" + lang + "%"
	fetchCap := limit * s.overfetch

	rows, err := s.query(ctx, preferredQuery(table), exclude, pattern, fetchCap)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates (preferred): %w", err)
	}
	if len(rows) > 0 {
		return rows, nil
	}
	rows, err = s.query(ctx, fallbackQuery(table), exclude, pattern, fetchCap)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates (fallback): %w", err)
	}
	return rows, nil
}

// Logged returns every entity id with a recorded decision in this snapshot.
func (s *PgStore) Logged(ctx context.Context, ep epoch.Epoch) ([]string, error) {
	if !ep.Valid() {
		return nil, fmt.Errorf("invalid epoch identifier %q", ep)
	}
	table := pgx.Identifier{ep.LogTable(s.prefix)}.Sanitize()
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT q_number FROM %s`, table))
	if err != nil {
		return nil, fmt.Errorf("logged entities: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return ids, nil
}

func preferredQuery(table string) string {
	return fmt.Sprintf(`
		SELECT q_number, missing_value, refs, languages
		FROM %s WHERE NOT (q_number = ANY($1)) AND languages LIKE $2 LIMIT $3`, table)
}

func fallbackQuery(table string) string {
	return fmt.Sprintf(`
		SELECT q_number, missing_value, refs, languages
		FROM %s WHERE NOT (q_number = ANY($1)) AND languages NOT LIKE $2 LIMIT $3`, table)
}

func (s *PgStore) query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows pgx.Rows) ([]Row, error) {
	var out []Row
	for rows.Next() {
		var r Row
		var refs string
		if err := rows.Scan(&r.QNumber, &r.MissingValue, &refs, &r.Languages); err != nil {
			return nil, err
		}
		r.RefURLs = splitRefs(refs)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return out, nil
}

// splitRefs parses the ", "-delimited URL list stored by the batch job.
func splitRefs(refs string) []string {
	if strings.TrimSpace(refs) == "" {
		return nil
	}
	parts := strings.Split(refs, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}
