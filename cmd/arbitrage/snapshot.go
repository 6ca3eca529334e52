package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dexArb/internal/chain"
	"dexArb/internal/config"
	"dexArb/internal/snapshot"
	"dexArb/internal/storage"
	"dexArb/internal/storage/postgres"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	block, err := chainClient.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("latest block: %w", err)
	}
	logger.Info("rpc connected", zap.Uint64("block", block))

	sinks := storage.Fanout{storage.NewJsonlStorage(cfg.Out)}
	var progress snapshot.Progress = snapshot.NewCheckpointStore(cfg.Checkpoint, cfg.CheckpointEnabled)

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
		if cfg.CheckpointEnabled {
			progress = store.Progress(fmt.Sprintf("snapshot:%s:%s", cfg.RouterA.Hex(), cfg.RouterB.Hex()))
		}
	}

	runner, err := snapshot.NewRunner(snapshot.RunConfig{
		VenueAName:    cfg.VenueAName,
		VenueBName:    cfg.VenueBName,
		RouterA:       cfg.RouterA,
		RouterB:       cfg.RouterB,
		Count:         cfg.Count,
		BatchSize:     cfg.BatchSize,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
		RateLimit:     cfg.RateLimit,
		MetaCacheSize: cfg.MetaCacheSize,
	}, chainClient, sinks, progress, logger)
	if err != nil {
		return err
	}

	logger.Info("snapshot start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("run_id", runner.RunID()),
		zap.String("router_a", cfg.RouterA.Hex()),
		zap.String("router_b", cfg.RouterB.Hex()),
		zap.Uint64("count", cfg.Count),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
	)

	return runner.Run(ctx)
}
