package candidate

import (
	"context"

	"factloop/pkg/epoch"
)

// Row is one unreviewed candidate fact within a snapshot. Rows are immutable
// once the snapshot is written.
type Row struct {
	// QNumber is the wikidata entity the fact is about, e.g. "Q42".
	QNumber string
	// MissingValue is the proposed value: a date string ("1990-05-17") or an
	// entity reference URL, depending on the game.
	MissingValue string
	// RefURLs are the source wikipedia pages the value was extracted from.
	RefURLs []string
	// Languages is the delimited set of language tags derived from RefURLs.
	Languages string
}

// Store is the contract for candidate retrieval.
type Store interface {
	// Fetch returns unreviewed rows from the snapshot's table, excluding the
	// given entity ids, preferring rows whose language tags contain lang and
	// falling back to rows whose tags do not. An empty result from both pools
	// signals exhaustion.
	Fetch(ctx context.Context, ep epoch.Epoch, limit int, lang string, exclude []string) ([]Row, error)
	// Logged returns the entity ids already present in the snapshot's
	// decision log, the durable half of the exclusion set.
	Logged(ctx context.Context, ep epoch.Epoch) ([]string, error)
}
