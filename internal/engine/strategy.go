package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"dexArb/internal/model"
)

// Strategy decides whether and how to trade in one iteration.
type Strategy interface {
	Name() string
	// Prepare runs once after the state is loaded.
	Prepare(ctx context.Context, st *State) error
	// Evaluate returns a ready-to-submit plan, or ErrNoOpportunity,
	// ErrInsufficientBalance or a *ReadError.
	Evaluate(ctx context.Context, st *State) (*Plan, error)
}

// Plan is a priced, encoded trade.
type Plan struct {
	Opportunity model.Opportunity
	Request     model.TransactionRequest
	DiffPrice   float64
}

// Submitter signs and sends transactions from the operator key.
type Submitter interface {
	From() common.Address
	EstimateGas(ctx context.Context, to common.Address, data []byte) (uint64, error)
	Submit(ctx context.Context, req model.TransactionRequest) (model.TransactionResult, error)
}

// GasQuoter supplies gas price tiers.
type GasQuoter interface {
	Quote(ctx context.Context) model.GasQuote
}

// Recorder emits operator records.
type Recorder interface {
	Account(ctx context.Context, address, currency common.Address) error
	Trade(ctx context.Context, pre, post, fee decimal.Decimal, tx common.Hash) error
	Transfer(ctx context.Context, amount, balance, fee decimal.Decimal, tx common.Hash) error
}

// Pair identifies the traded tokens and the execution contract.
type Pair struct {
	Token0   common.Address
	Token1   common.Address
	Contract common.Address
}
