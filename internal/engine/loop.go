package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"dexArb/internal/dex"
	"dexArb/internal/metrics"
	"dexArb/internal/units"
)

// DefaultPollInterval is the pause between iterations.
const DefaultPollInterval = 100 * time.Millisecond

// Outcome is the result of one loop iteration.
type Outcome int

const (
	OutcomeNoOpportunity Outcome = iota
	OutcomeInsufficientBalance
	OutcomeReadError
	OutcomeTraded
	OutcomeSubmissionFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoOpportunity:
		return "no_opportunity"
	case OutcomeInsufficientBalance:
		return "insufficient_balance"
	case OutcomeReadError:
		return "read_error"
	case OutcomeTraded:
		return "traded"
	case OutcomeSubmissionFailed:
		return "submission_failed"
	default:
		return "unknown"
	}
}

// LoopConfig holds the loop's fixed inputs.
type LoopConfig struct {
	Pair           Pair
	ReferenceAsset common.Address
	// ReferenceVenue prices the reference asset. Nil leaves the price at zero.
	ReferenceVenue *dex.Venue
	PollInterval   time.Duration
	LogThrottle    time.Duration
}

// Loop polls, evaluates and trades until its context is cancelled.
type Loop struct {
	cfg       LoopConfig
	strategy  Strategy
	caller    dex.Caller
	submitter Submitter
	recorder  Recorder
	logger    *zap.Logger
	state     *State
}

func NewLoop(cfg LoopConfig, strategy Strategy, caller dex.Caller, submitter Submitter, recorder Recorder, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.LogThrottle <= 0 {
		cfg.LogThrottle = DefaultLogThrottle
	}
	return &Loop{
		cfg:       cfg,
		strategy:  strategy,
		caller:    caller,
		submitter: submitter,
		recorder:  recorder,
		logger:    logger.With(zap.String("strategy", strategy.Name())),
		state:     NewState(cfg.LogThrottle),
	}
}

// State exposes the loop-owned state.
func (l *Loop) State() *State {
	return l.state
}

// Init loads decimals, the balance snapshot and the reference price, prepares
// the strategy and announces the account. Only decimals and balance failures
// abort startup.
func (l *Loop) Init(ctx context.Context) error {
	l.logger.Info("init starting")
	pair := l.cfg.Pair

	var err error
	if l.state.Decimals0, err = dex.TokenDecimals(ctx, l.caller, pair.Token0); err != nil {
		return fmt.Errorf("token0 decimals: %w", err)
	}
	if l.state.Decimals1, err = dex.TokenDecimals(ctx, l.caller, pair.Token1); err != nil {
		return fmt.Errorf("token1 decimals: %w", err)
	}
	if l.state.Balance, err = dex.BalanceOf(ctx, l.caller, pair.Token0, pair.Contract); err != nil {
		return fmt.Errorf("contract balance: %w", err)
	}
	metrics.ContractBalance.Set(units.Float(l.state.BalanceReadable()))

	if l.cfg.ReferenceVenue != nil {
		price, err := ReferencePrice(ctx, l.caller, l.cfg.ReferenceVenue, pair.Token0, l.cfg.ReferenceAsset, l.state.Decimals0)
		if err != nil {
			l.logger.Error("reference price unavailable, gas cost ignored", zap.Error(err))
		} else {
			l.state.RefPrice = price
		}
	}
	l.logger.Debug("reference price", zap.String("price", l.state.RefPrice.String()))

	if err := l.strategy.Prepare(ctx, l.state); err != nil {
		l.logger.Error("strategy prepare failed", zap.Error(err))
	}

	l.logger.Info("init done",
		zap.String("contract", pair.Contract.Hex()),
		zap.String("balance", units.FormatAmount(l.state.Balance, l.state.Decimals0)),
		zap.Uint8("decimals0", l.state.Decimals0),
		zap.Uint8("decimals1", l.state.Decimals1),
	)

	if err := l.recorder.Account(ctx, pair.Contract, pair.Token0); err != nil {
		l.logger.Warn("account record failed", zap.Error(err))
	}
	return nil
}

// Run iterates until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			l.logger.Info("loop stopped")
			return nil
		}

		l.Step(ctx)

		timer := time.NewTimer(l.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Step runs one iteration. Errors never escape; they are logged and reported
// through the outcome.
func (l *Loop) Step(ctx context.Context) Outcome {
	outcome := l.step(ctx)
	metrics.Iterations.WithLabelValues(outcome.String()).Inc()
	return outcome
}

func (l *Loop) step(ctx context.Context) Outcome {
	start := time.Now()
	plan, err := l.strategy.Evaluate(ctx, l.state)
	metrics.EvaluateLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, ErrNoOpportunity):
			l.throttled("no arbitrage", err)
			return OutcomeNoOpportunity
		case errors.Is(err, ErrInsufficientBalance):
			l.throttled("insufficient balance", err)
			return OutcomeInsufficientBalance
		default:
			if ctx.Err() == nil {
				l.logger.Warn("iteration skipped", zap.Error(err))
			}
			return OutcomeReadError
		}
	}

	// Reset only once a plan is ready; sized but unprofitable trades stay throttled.
	l.state.Throttle.Reset()
	if plan.Request.GasPrice != nil {
		metrics.GasPriceWei.Set(float64(plan.Request.GasPrice.Int64()))
	}
	l.logger.Info("arbitrage",
		zap.String("direction", plan.Opportunity.Direction.String()),
		zap.Float64("diff_price", plan.DiffPrice),
		zap.String("amount", plan.Opportunity.AmountIn.String()),
		zap.String("profit", plan.Opportunity.ExpectedProfit.String()),
		zap.Uint64("gas", plan.Request.GasLimit),
	)

	pre := l.state.BalanceReadable()
	result, err := l.submitter.Submit(ctx, plan.Request)
	if err != nil {
		metrics.Submissions.WithLabelValues("trade", "failed").Inc()
		l.logger.Error("trading failed", zap.String("tx", txHashOf(err)), zap.Error(err))
		return OutcomeSubmissionFailed
	}
	metrics.Submissions.WithLabelValues("trade", "ok").Inc()

	pair := l.cfg.Pair
	postRaw, err := dex.BalanceOf(ctx, l.caller, pair.Token0, pair.Contract)
	if err != nil {
		l.logger.Error("post-trade balance read failed", zap.String("tx", result.TxHash.Hex()), zap.Error(err))
		return OutcomeTraded
	}
	post := units.ToReadable(postRaw, l.state.Decimals0)
	fee := units.WeiToEther(result.Fee())

	if err := l.recorder.Trade(ctx, pre, post, fee, result.TxHash); err != nil {
		l.logger.Warn("trade record failed", zap.Error(err))
	}
	l.state.Balance = postRaw
	metrics.ContractBalance.Set(units.Float(post))

	l.logger.Info("trading done",
		zap.String("tx", result.TxHash.Hex()),
		zap.String("pre_balance", pre.String()),
		zap.String("post_balance", post.String()),
		zap.String("gas_fee", fee.String()),
	)
	return OutcomeTraded
}

func (l *Loop) throttled(msg string, err error) {
	if l.state.Throttle.Allow() {
		l.logger.Debug(msg, zap.Error(err))
	}
}
