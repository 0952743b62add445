package decision

import (
	"context"
	"fmt"

	"factloop/pkg/epoch"
)

// Decision is a player's verdict on one tile.
type Decision string

const (
	Accept Decision = "accept"
	Reject Decision = "reject"
	Skip   Decision = "skip"
)

// Parse validates a decision string from the wire.
func Parse(s string) (Decision, error) {
	switch d := Decision(s); d {
	case Accept, Reject, Skip:
		return d, nil
	default:
		return "", fmt.Errorf("unknown decision %q", s)
	}
}

// Store is the contract for decision persistence. Writes are last-write-wins
// per (player, entity): a repeat decision overwrites decision and timestamp
// in place, never appending a second row.
type Store interface {
	Log(ctx context.Context, ep epoch.Epoch, player, qNumber string, d Decision) error
	EnsureHistoryTable(ctx context.Context) error
	EnsureLogTable(ctx context.Context, ep epoch.Epoch) error
}
