package engine

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dexArb/internal/dex"
	"dexArb/internal/executor"
	"dexArb/internal/metrics"
	"dexArb/internal/model"
	"dexArb/internal/units"
)

// BalanceManager tops up the execution contract from the operator wallet.
type BalanceManager struct {
	pair      Pair
	autoFund  bool
	caller    dex.Caller
	submitter Submitter
	gas       GasQuoter
	recorder  Recorder
	logger    *zap.Logger
}

func NewBalanceManager(pair Pair, autoFund bool, caller dex.Caller, submitter Submitter, gas GasQuoter, recorder Recorder, logger *zap.Logger) *BalanceManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceManager{
		pair:      pair,
		autoFund:  autoFund,
		caller:    caller,
		submitter: submitter,
		gas:       gas,
		recorder:  recorder,
		logger:    logger,
	}
}

// EnsureFunded returns the amount that can be traded now. It issues at most
// one transfer and falls back to the current balance when funding is not
// possible or fails.
func (b *BalanceManager) EnsureFunded(ctx context.Context, st *State, required decimal.Decimal) (decimal.Decimal, *model.TransactionResult) {
	balance := st.BalanceReadable()
	if balance.GreaterThanOrEqual(required) {
		return required, nil
	}
	if !b.autoFund {
		return balance, nil
	}

	walletRaw, err := dex.BalanceOf(ctx, b.caller, b.pair.Token0, b.submitter.From())
	if err != nil {
		b.logger.Warn("wallet balance read failed", zap.Error(err))
		return balance, nil
	}
	wallet := units.ToReadable(walletRaw, st.Decimals0)
	needed := Shortfall(required, balance)
	if !wallet.GreaterThan(needed) {
		return balance, nil
	}

	neededRaw := units.ToRaw(needed, st.Decimals0)
	data, err := dex.PackTransfer(b.pair.Contract, neededRaw)
	if err != nil {
		b.logger.Error("pack transfer failed", zap.Error(err))
		return balance, nil
	}
	gasPrice := b.gas.Quote(ctx).High
	gasLimit, err := b.submitter.EstimateGas(ctx, b.pair.Token0, data)
	if err != nil {
		b.logger.Warn("estimate transfer gas failed", zap.Error(err))
		return balance, nil
	}

	result, err := b.submitter.Submit(ctx, model.TransactionRequest{
		To:       b.pair.Token0,
		Data:     data,
		GasLimit: gasLimit,
		GasPrice: gasPrice,
	})
	if err != nil {
		metrics.Submissions.WithLabelValues("transfer", "failed").Inc()
		b.logger.Error("transferring failed", zap.String("tx", txHashOf(err)), zap.Error(err))
		return balance, nil
	}
	metrics.Submissions.WithLabelValues("transfer", "ok").Inc()

	postRaw, err := dex.BalanceOf(ctx, b.caller, b.pair.Token0, b.pair.Contract)
	if err != nil {
		b.logger.Warn("post-transfer balance read failed", zap.Error(err))
		postRaw = new(big.Int).Add(st.Balance, neededRaw)
	}
	post := units.ToReadable(postRaw, st.Decimals0)
	fee := units.WeiToEther(result.Fee())

	if err := b.recorder.Transfer(ctx, needed, post, fee, result.TxHash); err != nil {
		b.logger.Warn("transfer record failed", zap.Error(err))
	}
	st.Balance = postRaw
	metrics.ContractBalance.Set(units.Float(post))

	b.logger.Info("transferring done",
		zap.String("tx", result.TxHash.Hex()),
		zap.String("amount", needed.String()),
		zap.String("pre_balance", balance.String()),
		zap.String("post_balance", post.String()),
		zap.String("gas_fee", fee.String()),
	)
	return required, &result
}

func txHashOf(err error) string {
	var subErr *executor.SubmissionError
	if errors.As(err, &subErr) && subErr.TxHash != (common.Hash{}) {
		return subErr.TxHash.Hex()
	}
	return ""
}
