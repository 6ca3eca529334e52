package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"dexArb/internal/dex"
	"dexArb/internal/executor"
	"dexArb/internal/metrics"
	"dexArb/internal/model"
	"dexArb/internal/units"
)

// FlashStrategy trades through a flash-loan contract that sizes the trade
// itself through checkTrading.
type FlashStrategy struct {
	pair      Pair
	routerA   common.Address
	routerB   common.Address
	contract  *dex.FlashContract
	submitter Submitter
	gas       GasQuoter
	logger    *zap.Logger
}

func NewFlashStrategy(pair Pair, routerA, routerB common.Address, contract *dex.FlashContract, submitter Submitter, gas GasQuoter, logger *zap.Logger) *FlashStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlashStrategy{
		pair:      pair,
		routerA:   routerA,
		routerB:   routerB,
		contract:  contract,
		submitter: submitter,
		gas:       gas,
		logger:    logger,
	}
}

func (s *FlashStrategy) Name() string { return "flash" }

// Prepare points the contract at the configured routers when it disagrees.
func (s *FlashStrategy) Prepare(ctx context.Context, _ *State) error {
	a, b, err := s.contract.Routers(ctx)
	if err != nil {
		return fmt.Errorf("read contract routers: %w", err)
	}
	if a == s.routerA && b == s.routerB {
		return nil
	}

	s.logger.Info("updating contract routers",
		zap.String("current_a", a.Hex()),
		zap.String("current_b", b.Hex()),
		zap.String("router_a", s.routerA.Hex()),
		zap.String("router_b", s.routerB.Hex()),
	)

	data, err := dex.PackSetRouters(s.routerA, s.routerB)
	if err != nil {
		return err
	}
	gasLimit, err := s.submitter.EstimateGas(ctx, s.pair.Contract, data)
	if err != nil {
		return fmt.Errorf("estimate setRouters: %w", err)
	}
	result, err := s.submitter.Submit(ctx, model.TransactionRequest{
		To:       s.pair.Contract,
		Data:     data,
		GasLimit: gasLimit,
		GasPrice: s.gas.Quote(ctx).High,
	})
	if err != nil {
		metrics.Submissions.WithLabelValues("set_routers", "failed").Inc()
		var subErr *executor.SubmissionError
		if errors.As(err, &subErr) {
			return fmt.Errorf("setRouters %s: %w", subErr.TxHash.Hex(), err)
		}
		return fmt.Errorf("setRouters: %w", err)
	}
	metrics.Submissions.WithLabelValues("set_routers", "ok").Inc()
	s.logger.Info("setRouters done", zap.String("tx", result.TxHash.Hex()))
	return nil
}

func (s *FlashStrategy) Evaluate(ctx context.Context, st *State) (*Plan, error) {
	check, err := s.contract.CheckTrading(ctx, s.pair.Token0, s.pair.Token1)
	if err != nil {
		return nil, readErr("checkTrading", err)
	}

	amount := units.ToReadable(check.AmountIn, st.Decimals1)
	if check.AmountIn.Sign() == 0 {
		return nil, fmt.Errorf("%w: amount=%s", ErrNoOpportunity, amount)
	}

	data, err := dex.PackFlashTrade(s.pair.Token0, s.pair.Token1, check.AToB, check.AmountIn)
	if err != nil {
		return nil, err
	}
	gasPrice := s.gas.Quote(ctx).High
	gasLimit, err := s.submitter.EstimateGas(ctx, s.pair.Contract, data)
	if err != nil {
		return nil, readErr("estimate trade gas", err)
	}

	gross := units.ToReadable(check.Profit, st.Decimals0)
	net := NetProfit(gross, gasLimit, gasPrice, st.RefPrice)
	metrics.ExpectedProfit.Set(units.Float(net))
	if !net.IsPositive() {
		return nil, fmt.Errorf("%w: amount=%s profit=%s", ErrNoOpportunity, amount, net)
	}

	return &Plan{
		Opportunity: model.Opportunity{
			Direction:      model.DirectionFromForward(check.AToB),
			AmountIn:       amount,
			ExpectedProfit: net,
		},
		Request: model.TransactionRequest{
			To:       s.pair.Contract,
			Data:     data,
			GasLimit: gasLimit,
			GasPrice: gasPrice,
		},
	}, nil
}
