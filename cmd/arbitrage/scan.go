package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dexArb/internal/config"
	"dexArb/internal/prefilter"
	"dexArb/internal/storage"
)

func runScan(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadScan(cfgFile, cmd.Flags())
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

	out := storage.NewJsonlStorage(cfg.Out)
	if err := out.Reset(); err != nil {
		return err
	}

	res, err := prefilter.Scan(ctx, cfg.In, out, prefilter.Thresholds{
		Amount: cfg.AmountThreshold,
		Ratio:  cfg.RatioThreshold,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("scan complete",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.Int("scanned", res.Scanned),
		zap.Int("candidates", res.Candidates),
	)
	return nil
}
