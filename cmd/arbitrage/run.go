package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"dexArb/internal/chain"
	"dexArb/internal/config"
	"dexArb/internal/dex"
	"dexArb/internal/engine"
	"dexArb/internal/executor"
	"dexArb/internal/gas"
	"dexArb/internal/metrics"
	"dexArb/internal/report"
)

func runArbitrage(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	// Log lines and operator records share stdout.
	stdout := zapcore.Lock(os.Stdout)
	logger, err := report.NewLogger(stdout, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mirror report.Publisher
	if cfg.RedisAddr != "" {
		pub, err := report.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return err
		}
		defer pub.Close()
		mirror = pub
	}
	reporter := report.NewReporter(stdout, mirror)

	key, err := crypto.HexToECDSA(cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("parse private key: %w", err)
	}

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

	exec, err := executor.New(ctx, chainClient, key, executor.Config{
		PollInterval:   cfg.ReceiptPoll,
		ReceiptTimeout: cfg.ReceiptTimeout,
	}, logger)
	if err != nil {
		return err
	}
	oracle := gas.NewOracle(cfg.GasStationURL, chainClient, logger)

	venueA, err := dex.NewVenue(ctx, chainClient, cfg.VenueAName, cfg.RouterA)
	if err != nil {
		return err
	}
	venueB, err := dex.NewVenue(ctx, chainClient, cfg.VenueBName, cfg.RouterB)
	if err != nil {
		return err
	}

	pair := engine.Pair{Token0: cfg.Token0, Token1: cfg.Token1, Contract: cfg.Contract}

	var strategy engine.Strategy
	switch cfg.Strategy {
	case config.StrategyFlash:
		contract := dex.NewFlashContract(chainClient, cfg.Contract)
		strategy = engine.NewFlashStrategy(pair, cfg.RouterA, cfg.RouterB, contract, exec, oracle, logger)
	default:
		market, err := engine.OpenMarket(ctx, chainClient, venueA, venueB, cfg.Token0, cfg.Token1)
		if err != nil {
			return fmt.Errorf("open market: %w", err)
		}
		funder := engine.NewBalanceManager(pair, cfg.AutoFund, chainClient, exec, oracle, reporter, logger)
		strategy = engine.NewNormalStrategy(pair, market, funder, exec, oracle, logger)
	}

	loop := engine.NewLoop(engine.LoopConfig{
		Pair:           pair,
		ReferenceAsset: cfg.ReferenceAsset,
		ReferenceVenue: venueA,
		PollInterval:   cfg.PollInterval,
		LogThrottle:    cfg.LogThrottle,
	}, strategy, chainClient, exec, reporter, logger)

	logger.Info("arbitrage start",
		zap.String("strategy", strategy.Name()),
		zap.String("operator", exec.From().Hex()),
		zap.String("venue_a", venueA.Name),
		zap.String("venue_b", venueB.Name),
		zap.String("token0", cfg.Token0.Hex()),
		zap.String("token1", cfg.Token1.Hex()),
		zap.String("contract", cfg.Contract.Hex()),
		zap.Bool("auto_fund", cfg.AutoFund),
	)

	if err := loop.Init(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		return metrics.Serve(gctx, cfg.MetricsAddr, nil, logger)
	})
	return g.Wait()
}
