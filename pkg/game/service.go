package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"factloop/pkg/candidate"
	"factloop/pkg/decision"
	"factloop/pkg/dedup"
	"factloop/pkg/epoch"
	"factloop/pkg/tile"
)

// DefaultMaxPasses caps fetch iterations per request, bounding worst-case
// latency when most candidates fail verification.
const DefaultMaxPasses = 10

// EpochSource resolves the current dataset snapshot.
type EpochSource interface {
	Latest(ctx context.Context) (epoch.Epoch, error)
}

// CandidateSource supplies unreviewed candidate rows.
type CandidateSource interface {
	Fetch(ctx context.Context, ep epoch.Epoch, limit int, lang string, exclude []string) ([]candidate.Row, error)
	Logged(ctx context.Context, ep epoch.Epoch) ([]string, error)
}

// ClaimVerifier checks the live knowledge base for an existing claim.
type ClaimVerifier interface {
	HasClaim(ctx context.Context, entityID, property string) (bool, error)
}

// DecisionLog persists player decisions.
type DecisionLog interface {
	Log(ctx context.Context, ep epoch.Epoch, player, qNumber string, d decision.Decision) error
}

// Config wires a Service.
type Config struct {
	Definition Definition
	Epochs     EpochSource
	Candidates CandidateSource
	Verifier   ClaimVerifier
	Decisions  DecisionLog
	// MaxPasses caps candidate fetch rounds per tiles request. Zero selects
	// DefaultMaxPasses.
	MaxPasses int
}

// Service composes the pipeline behind the desc/tiles/log_action requests.
type Service struct {
	def        Definition
	epochs     EpochSource
	candidates CandidateSource
	verifier   ClaimVerifier
	decisions  DecisionLog
	tracker    *dedup.Tracker
	maxPasses  int
}

// New creates a Service with a fresh served-set tracker.
func New(cfg Config) *Service {
	maxPasses := cfg.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	return &Service{
		def:        cfg.Definition,
		epochs:     cfg.Epochs,
		candidates: cfg.Candidates,
		verifier:   cfg.Verifier,
		decisions:  cfg.Decisions,
		tracker:    dedup.New(),
		maxPasses:  maxPasses,
	}
}

// Description is the static game descriptor shown by the platform.
type Description struct {
	Label        map[string]string `json:"label"`
	Description  map[string]string `json:"description"`
	Instructions map[string]string `json:"instructions"`
	Icon         string            `json:"icon"`
}

// Describe returns the game descriptor with the latest epoch interpolated
// into the instructions.
func (s *Service) Describe(ctx context.Context) (Description, error) {
	ep, err := s.epochs.Latest(ctx)
	if err != nil {
		return Description{}, fmt.Errorf("describe: %w", err)
	}
	return Description{
		Label:        en(s.def.Label),
		Description:  en(s.def.Description),
		Instructions: en(fmt.Sprintf(s.def.Instructions, ep)),
		Icon:         s.def.Icon,
	}, nil
}

func en(text string) map[string]string {
	return map[string]string{"en": text}
}

// Tiles assembles up to num tiles for the given language preference. It
// returns fewer tiles (possibly none) when the candidate pools are exhausted
// or the pass cap is hit; per-candidate failures never abort the batch.
func (s *Service) Tiles(ctx context.Context, num int, lang string) ([]tile.Tile, error) {
	if num < 1 {
		num = 1
	}
	ep, err := s.epochs.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("tiles: %w", err)
	}

	logged, err := s.candidates.Logged(ctx, ep)
	if err != nil {
		// Without the durable exclusion set we could re-show reviewed
		// entities, so serve nothing for this poll.
		log.Error().Err(err).Str("epoch", string(ep)).Msg("logged-set query failed")
		return []tile.Tile{}, nil
	}

	tiles := make([]tile.Tile, 0, num)
	for pass := 0; pass < s.maxPasses && len(tiles) < num; pass++ {
		exclude := append(s.tracker.Served(), logged...)
		rows, err := s.candidates.Fetch(ctx, ep, num, lang, exclude)
		if err != nil {
			log.Error().Err(err).Str("epoch", string(ep)).Msg("candidate query failed")
			break
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			if len(tiles) >= num {
				break
			}
			// Mark before verification so a failing verify never causes a
			// second attempt in this process.
			if !s.tracker.CheckAndMark(row.QNumber) {
				continue
			}
			has, err := s.verifier.HasClaim(ctx, row.QNumber, s.def.Property)
			if err != nil {
				log.Warn().Err(err).Str("entity", row.QNumber).Msg("claim check failed, skipping candidate")
				continue
			}
			if has {
				continue
			}
			t, err := tile.Build(s.def.Format(), row.QNumber, row.MissingValue, row.RefURLs)
			if err != nil {
				log.Warn().Err(err).Str("entity", row.QNumber).Msg("tile build failed, skipping candidate")
				continue
			}
			tiles = append(tiles, t)
		}
	}
	return tiles, nil
}

// LogDecision records a player's verdict in the snapshot log and the global
// history.
func (s *Service) LogDecision(ctx context.Context, player, qNumber string, d decision.Decision) error {
	ep, err := s.epochs.Latest(ctx)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	if err := s.decisions.Log(ctx, ep, player, qNumber, d); err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}
