package engine

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dexArb/internal/dex"
	"dexArb/internal/metrics"
	"dexArb/internal/model"
	"dexArb/internal/units"
)

// Funder makes sure the execution contract holds enough token0.
type Funder interface {
	EnsureFunded(ctx context.Context, st *State, required decimal.Decimal) (decimal.Decimal, *model.TransactionResult)
}

// NormalStrategy sizes trades from the two pools' reserves and trades from
// the contract's own token0 balance.
type NormalStrategy struct {
	pair      Pair
	market    *Market
	funder    Funder
	submitter Submitter
	gas       GasQuoter
	logger    *zap.Logger
}

func NewNormalStrategy(pair Pair, market *Market, funder Funder, submitter Submitter, gas GasQuoter, logger *zap.Logger) *NormalStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NormalStrategy{
		pair:      pair,
		market:    market,
		funder:    funder,
		submitter: submitter,
		gas:       gas,
		logger:    logger,
	}
}

func (s *NormalStrategy) Name() string { return "normal" }

func (s *NormalStrategy) Prepare(ctx context.Context, st *State) error {
	quotes, err := s.market.Read(ctx, st)
	if err != nil {
		return err
	}
	s.logger.Debug("pools ready",
		zap.String("venue_a", s.market.VenueA.Name),
		zap.String("pair_a", s.market.PoolA.Address.Hex()),
		zap.Float64("price_a", quotes.Primary.Price),
		zap.String("venue_b", s.market.VenueB.Name),
		zap.String("pair_b", s.market.PoolB.Address.Hex()),
		zap.Float64("price_b", quotes.Secondary.Price),
	)
	return nil
}

func (s *NormalStrategy) Evaluate(ctx context.Context, st *State) (*Plan, error) {
	quotes, err := s.market.Read(ctx, st)
	if err != nil {
		return nil, err
	}

	diff := DiffPrice(quotes.Primary, quotes.Secondary)
	metrics.DiffPrice.Set(diff)
	if PricesAligned(diff) {
		return nil, fmt.Errorf("%w: same prices, diff=%g", ErrNoOpportunity, diff)
	}

	forward := diff > 0
	size := TradeAmount(quotes.Primary, quotes.Secondary, forward)
	if math.IsNaN(size) || math.IsInf(size, 0) || size <= 0 {
		return nil, fmt.Errorf("%w: diff=%g size=%g", ErrNoOpportunity, diff, size)
	}
	required := decimal.NewFromFloat(size)

	amount := required
	if st.BalanceReadable().LessThan(required) {
		amount, _ = s.funder.EnsureFunded(ctx, st, required)
		if amount.LessThanOrEqual(decimal.NewFromFloat(dustAmount)) {
			return nil, fmt.Errorf("%w: balance=%s", ErrInsufficientBalance, st.BalanceReadable())
		}
	}

	amountRaw := units.ToRaw(amount.Round(amountPlaces), st.Decimals0)
	if amountRaw.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount %s below precision", ErrNoOpportunity, amount)
	}

	data, err := dex.PackNormalTrade(s.pair.Token0, s.pair.Token1, amountRaw, forward)
	if err != nil {
		return nil, err
	}
	gasPrice := s.gas.Quote(ctx).High
	gasLimit, err := s.submitter.EstimateGas(ctx, s.pair.Contract, data)
	if err != nil {
		return nil, readErr("estimate trade gas", err)
	}

	out, err := s.roundTrip(ctx, amountRaw, forward, quotes)
	if err != nil {
		return nil, err
	}
	gross := units.ToReadable(out, st.Decimals0).Sub(units.ToReadable(amountRaw, st.Decimals0))
	net := NetProfit(gross, gasLimit, gasPrice, st.RefPrice)
	metrics.ExpectedProfit.Set(units.Float(net))
	if !net.IsPositive() {
		return nil, fmt.Errorf("%w: diff=%g %s=(%g, %g) %s=(%g, %g) amount=%s profit=%s",
			ErrNoOpportunity, diff,
			s.market.VenueA.Name, quotes.Primary.TokenAReadable, quotes.Primary.TokenBReadable,
			s.market.VenueB.Name, quotes.Secondary.TokenAReadable, quotes.Secondary.TokenBReadable,
			amount, net)
	}

	return &Plan{
		Opportunity: model.Opportunity{
			Direction:      model.DirectionFromForward(forward),
			AmountIn:       amount,
			ExpectedProfit: net,
		},
		Request: model.TransactionRequest{
			To:       s.pair.Contract,
			Data:     data,
			GasLimit: gasLimit,
			GasPrice: gasPrice,
		},
		DiffPrice: diff,
	}, nil
}

// roundTrip quotes token0 -> token1 on the buying venue and back on the other.
func (s *NormalStrategy) roundTrip(ctx context.Context, amountIn *big.Int, forward bool, q model.VenueQuotes) (*big.Int, error) {
	first, second := s.market.VenueA, s.market.VenueB
	firstRes, secondRes := q.PrimaryReserves, q.SecondaryReserves
	if !forward {
		first, second = second, first
		firstRes, secondRes = secondRes, firstRes
	}

	mid, err := first.AmountOut(ctx, amountIn, firstRes.TokenA, firstRes.TokenB)
	if err != nil {
		return nil, readErr(first.Name+" getAmountOut", err)
	}
	out, err := second.AmountOut(ctx, mid, secondRes.TokenB, secondRes.TokenA)
	if err != nil {
		return nil, readErr(second.Name+" getAmountOut", err)
	}
	return out, nil
}
