package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"factloop/internal/api"
	"factloop/internal/config"
	"factloop/internal/db"
	"factloop/pkg/candidate"
	"factloop/pkg/decision"
	"factloop/pkg/epoch"
	"factloop/pkg/game"
	"factloop/pkg/wikidata"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfgPath, logLevel string

	root := &cobra.Command{
		Use:          "factloop",
		Short:        "Crowdsourcing game backend serving wikidata candidate-fact tiles",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(parseLevel(logLevel))
			zerolog.DurationFieldUnit = time.Millisecond
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to yaml config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the tile-serving HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfgPath)
		},
	}
	root.AddCommand(serve)
	return root
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func runServe(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	def, ok := game.Lookup(cfg.Game.Key)
	if !ok {
		return fmt.Errorf("unknown game %q (known: %s)", cfg.Game.Key, strings.Join(game.Keys(), ", "))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	epochs := epoch.NewPgStore(pool)
	candidates := candidate.NewPgStore(pool, cfg.Database.TablePrefix, cfg.Game.Overfetch)
	decisions := decision.NewPgStore(pool, cfg.Database.TablePrefix)

	if err := epochs.EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure epoch table: %w", err)
	}
	if err := decisions.EnsureHistoryTable(ctx); err != nil {
		return fmt.Errorf("ensure history table: %w", err)
	}
	// The service is redeployed per snapshot, so the current snapshot's log
	// table can be created up front. A missing snapshot is not fatal here;
	// requests will answer best-effort until the batch job lands one.
	if ep, err := epochs.Latest(ctx); err == nil {
		if err := decisions.EnsureLogTable(ctx, ep); err != nil {
			return fmt.Errorf("ensure log table: %w", err)
		}
	} else if errors.Is(err, epoch.ErrNoEpoch) {
		log.Warn().Msg("no dataset epoch yet")
	} else {
		return fmt.Errorf("resolve epoch: %w", err)
	}

	svc := game.New(game.Config{
		Definition: def,
		Epochs:     epochs,
		Candidates: candidates,
		Verifier: wikidata.New(wikidata.Config{
			Endpoint:          cfg.Wikidata.Endpoint,
			Timeout:           cfg.Wikidata.Timeout(),
			RequestsPerSecond: cfg.Wikidata.RequestsPerSecond,
			MaxRetries:        cfg.Wikidata.MaxRetries,
		}),
		Decisions: decisions,
		MaxPasses: cfg.Game.MaxPasses,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.New(svc, cfg.Server.MaxBatch),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Str("game", def.Key).Msg("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}
