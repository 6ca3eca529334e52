package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dexArb/internal/gas"
	"dexArb/internal/prefilter"
)

func main() {
	root := &cobra.Command{
		Use:          "arbitrage",
		Short:        "Two-venue AMM arbitrage bot",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Watch both venues and trade price divergences",
		RunE:  runArbitrage,
	}

	runCmd.Flags().String("rpc", "", "RPC URL")
	runCmd.Flags().String("private-key", "", "operator private key (hex); PRIV_KEY is also read")
	runCmd.Flags().String("strategy", "normal", "execution strategy (flash, normal)")
	runCmd.Flags().String("venue-a", "PancakeSwap", "venue A display name")
	runCmd.Flags().String("venue-b", "SushiSwap", "venue B display name")
	runCmd.Flags().String("router-a", "", "venue A router address")
	runCmd.Flags().String("router-b", "", "venue B router address")
	runCmd.Flags().String("reference-asset", "", "gas reference asset address (wrapped native token)")
	runCmd.Flags().String("token0", "", "base token address")
	runCmd.Flags().String("token1", "", "quote token address")
	runCmd.Flags().String("contract", "", "execution contract address")
	runCmd.Flags().Bool("auto-fund", false, "top up the execution contract from the operator wallet")
	runCmd.Flags().String("gas-station-url", gas.DefaultStationURL, "gas station URL")
	runCmd.Flags().Duration("poll-interval", 100*time.Millisecond, "pause between iterations")
	runCmd.Flags().Duration("log-throttle", 10*time.Second, "minimum spacing of repeated no-opportunity logs")
	runCmd.Flags().Duration("receipt-timeout", 2*time.Minute, "maximum wait for a transaction receipt")
	runCmd.Flags().Duration("receipt-poll", time.Second, "receipt polling interval")
	runCmd.Flags().String("metrics-addr", "", "listen address for /metrics and /healthz, empty disables")
	runCmd.Flags().String("redis-addr", "", "mirror operator records to this Redis, empty disables")
	runCmd.Flags().String("redis-channel", "dexarb:records", "Redis pub/sub channel for records")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record every pair listed on both venues",
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().String("rpc", "", "RPC URL")
	snapshotCmd.Flags().String("venue-a", "PancakeSwap", "venue A display name")
	snapshotCmd.Flags().String("venue-b", "SushiSwap", "venue B display name")
	snapshotCmd.Flags().String("router-a", "", "venue A router address")
	snapshotCmd.Flags().String("router-b", "", "venue B router address")
	snapshotCmd.Flags().Uint64("count", 0, "maximum factory indices to visit, 0 means all")
	snapshotCmd.Flags().Uint64("batch-size", 100, "pairs per storage batch")
	snapshotCmd.Flags().String("out", "./data/pairs.jsonl", "output JSONL path")
	snapshotCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	snapshotCmd.Flags().String("checkpoint", "./data/snapshot_checkpoint.json", "checkpoint file path")
	snapshotCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	snapshotCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	snapshotCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	snapshotCmd.Flags().Float64("rate-limit", 20, "maximum eth_call requests per second, 0 disables")
	snapshotCmd.Flags().Int("meta-cache-size", 4096, "token metadata cache entries")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(snapshotCmd)

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Filter a snapshot down to arbitrage candidates",
		RunE:  runScan,
	}

	scanCmd.Flags().String("in", "./data/pairs.jsonl", "input snapshot JSONL")
	scanCmd.Flags().String("out", "./data/candidates.jsonl", "output candidates JSONL")
	scanCmd.Flags().Float64("amount-threshold", prefilter.DefaultAmountThreshold, "minimum readable reserve on every side")
	scanCmd.Flags().Float64("ratio-threshold", prefilter.DefaultRatioThreshold, "maximum min/max price ratio")
	scanCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(scanCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
