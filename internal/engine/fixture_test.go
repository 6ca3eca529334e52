package engine

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dexArb/internal/dex"
	"dexArb/internal/dex/dextest"
	"dexArb/internal/model"
	"dexArb/internal/units"
)

var (
	token0   = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	token1   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	refToken = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	routerA  = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	factoryA = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	pairA    = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	routerB  = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	factoryB = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	pairB    = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	contract = common.HexToAddress("0x00000000000000000000000000000000000000d0")
	operator = common.HexToAddress("0x00000000000000000000000000000000000000e0")

	testPair = Pair{Token0: token0, Token1: token1, Contract: contract}
)

func amount(s string) *big.Int {
	return units.ToRaw(decimal.RequireFromString(s), 18)
}

type fakeSubmitter struct {
	mu          sync.Mutex
	from        common.Address
	gasLimit    uint64
	estimateErr error
	errs        []error
	requests    []model.TransactionRequest
	onSubmit    func(req model.TransactionRequest)
}

func (f *fakeSubmitter) From() common.Address { return f.from }

func (f *fakeSubmitter) EstimateGas(context.Context, common.Address, []byte) (uint64, error) {
	return f.gasLimit, f.estimateErr
}

func (f *fakeSubmitter) Submit(_ context.Context, req model.TransactionRequest) (model.TransactionResult, error) {
	f.mu.Lock()
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	hash := common.BigToHash(big.NewInt(int64(idx + 1)))
	if idx < len(f.errs) && f.errs[idx] != nil {
		return model.TransactionResult{}, f.errs[idx]
	}
	if f.onSubmit != nil {
		f.onSubmit(req)
	}
	return model.TransactionResult{
		TxHash:            hash,
		GasUsed:           100_000,
		EffectiveGasPrice: big.NewInt(5_000_000_000),
		Success:           true,
	}, nil
}

type fixedGas struct {
	price *big.Int
}

func (g fixedGas) Quote(context.Context) model.GasQuote {
	return model.UniformGasQuote(g.price)
}

type tradeRec struct {
	pre, post, fee decimal.Decimal
	tx             common.Hash
}

type transferRec struct {
	amount, balance, fee decimal.Decimal
	tx                   common.Hash
}

type recorder struct {
	accounts  []model.AccountInfo
	trades    []tradeRec
	transfers []transferRec
}

func (r *recorder) Account(_ context.Context, address, currency common.Address) error {
	r.accounts = append(r.accounts, model.AccountInfo{Address: address.Hex(), Currency: currency.Hex()})
	return nil
}

func (r *recorder) Trade(_ context.Context, pre, post, fee decimal.Decimal, tx common.Hash) error {
	r.trades = append(r.trades, tradeRec{pre: pre, post: post, fee: fee, tx: tx})
	return nil
}

func (r *recorder) Transfer(_ context.Context, amount, balance, fee decimal.Decimal, tx common.Hash) error {
	r.transfers = append(r.transfers, transferRec{amount: amount, balance: balance, fee: fee, tx: tx})
	return nil
}

type normalFixture struct {
	chain     *dextest.Chain
	submitter *fakeSubmitter
	recorder  *recorder
	loop      *Loop
	venueA    *dex.Venue
}

type normalOptions struct {
	balance  string
	wallet   string
	autoFund bool
	gasPrice *big.Int
	logger   *zap.Logger
}

// newNormalFixture lists token0/token1 on venue A at (1000, 2000) and on venue
// B at (1000, 2100). Venue B stores the pair in reverse token order.
func newNormalFixture(t *testing.T, opts normalOptions) *normalFixture {
	t.Helper()
	ctx := context.Background()

	chain := dextest.New()
	chain.AddToken(token0, 18, "T0")
	chain.AddToken(token1, 18, "T1")
	chain.AddVenue(routerA, factoryA)
	chain.AddVenue(routerB, factoryB)
	chain.AddPool(factoryA, pairA, token0, token1, amount("1000"), amount("2000"))
	chain.AddPool(factoryB, pairB, token1, token0, amount("2100"), amount("1000"))
	chain.SetBalance(token0, contract, amount(opts.balance))
	if opts.wallet != "" {
		chain.SetBalance(token0, operator, amount(opts.wallet))
	}

	venueA, err := dex.NewVenue(ctx, chain, "PancakeSwap", routerA)
	require.NoError(t, err)
	venueB, err := dex.NewVenue(ctx, chain, "SushiSwap", routerB)
	require.NoError(t, err)
	market, err := OpenMarket(ctx, chain, venueA, venueB, token0, token1)
	require.NoError(t, err)

	sub := &fakeSubmitter{from: operator, gasLimit: 300_000}
	sub.onSubmit = func(req model.TransactionRequest) {
		switch req.To {
		case token0:
			args := unpackArgs(t, mustABI(t, dex.ERC20ABI), "transfer", req.Data)
			moved := args[1].(*big.Int)
			chain.SetBalance(token0, operator, new(big.Int).Sub(chain.BalanceOf(token0, operator), moved))
			chain.SetBalance(token0, contract, new(big.Int).Add(chain.BalanceOf(token0, contract), moved))
		case contract:
			chain.SetBalance(token0, contract, new(big.Int).Add(chain.BalanceOf(token0, contract), amount("0.2")))
		}
	}

	gasPrice := opts.gasPrice
	if gasPrice == nil {
		gasPrice = big.NewInt(5_000_000_000)
	}
	gas := fixedGas{price: gasPrice}
	rec := &recorder{}

	funder := NewBalanceManager(testPair, opts.autoFund, chain, sub, gas, rec, nil)
	strategy := NewNormalStrategy(testPair, market, funder, sub, gas, nil)
	loop := NewLoop(LoopConfig{
		Pair:           testPair,
		ReferenceAsset: token0,
		ReferenceVenue: venueA,
	}, strategy, chain, sub, rec, opts.logger)
	require.NoError(t, loop.Init(ctx))

	return &normalFixture{chain: chain, submitter: sub, recorder: rec, loop: loop, venueA: venueA}
}

func mustABI(t *testing.T, load func() (abi.ABI, error)) abi.ABI {
	t.Helper()
	parsed, err := load()
	require.NoError(t, err)
	return parsed
}

func unpackArgs(t *testing.T, parsed abi.ABI, method string, data []byte) []interface{} {
	t.Helper()
	m, ok := parsed.Methods[method]
	require.True(t, ok)
	require.Equal(t, []byte(m.ID), data[:4])
	args, err := m.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	return args
}
