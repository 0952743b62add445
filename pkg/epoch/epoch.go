package epoch

import (
	"context"
	"errors"
	"regexp"
)

// ErrNoEpoch indicates the metadata table holds no dataset snapshots. No
// candidates can exist without a snapshot, so callers treat this as fatal
// for the current request.
var ErrNoEpoch = errors.New("no dataset epoch available")

// Epoch identifies one immutable snapshot of candidate facts, produced by an
// upstream batch job. Identifiers sort lexicographically in creation order
// (dates or sequence numbers).
type Epoch string

// epochPattern restricts identifiers to what may safely appear in a table
// name. Epochs come from our own metadata table, but they are interpolated
// into SQL identifiers, so they are validated anyway.
var epochPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Valid reports whether the identifier is safe to use in a table name.
func (e Epoch) Valid() bool {
	return epochPattern.MatchString(string(e))
}

// CandidateTable returns the name of the per-snapshot candidate table.
func (e Epoch) CandidateTable(prefix string) string {
	return prefix + "_" + string(e)
}

// LogTable returns the name of the per-snapshot decision log table.
func (e Epoch) LogTable(prefix string) string {
	return prefix + "_" + string(e) + "_logging"
}

// Store is the contract for snapshot metadata persistence.
type Store interface {
	Latest(ctx context.Context) (Epoch, error)
	EnsureTable(ctx context.Context) error
}
