package engine

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"dexArb/internal/dex"
	"dexArb/internal/model"
	"dexArb/internal/units"
)

// Market is the configured token pair listed on both venues.
type Market struct {
	Token0 common.Address
	Token1 common.Address
	VenueA *dex.Venue
	VenueB *dex.Venue
	PoolA  *dex.Pool
	PoolB  *dex.Pool
}

// OpenMarket resolves the pair's pool on each venue.
func OpenMarket(ctx context.Context, caller dex.Caller, venueA, venueB *dex.Venue, token0, token1 common.Address) (*Market, error) {
	m := &Market{Token0: token0, Token1: token1, VenueA: venueA, VenueB: venueB}

	var err error
	if m.PoolA, err = openPool(ctx, caller, venueA, token0, token1); err != nil {
		return nil, err
	}
	if m.PoolB, err = openPool(ctx, caller, venueB, token0, token1); err != nil {
		return nil, err
	}
	return m, nil
}

func openPool(ctx context.Context, caller dex.Caller, venue *dex.Venue, token0, token1 common.Address) (*dex.Pool, error) {
	addr, err := venue.PairFor(ctx, token0, token1)
	if err != nil {
		return nil, err
	}
	pool, err := dex.NewPool(ctx, caller, addr)
	if err != nil {
		return nil, fmt.Errorf("%s pool %s: %w", venue.Name, addr.Hex(), err)
	}
	return pool, nil
}

// Read returns both venues' reserves oriented to token0/token1.
func (m *Market) Read(ctx context.Context, st *State) (model.VenueQuotes, error) {
	ra, err := m.PoolA.ReservesFor(ctx, m.Token0)
	if err != nil {
		return model.VenueQuotes{}, readErr(m.VenueA.Name+" reserves", err)
	}
	rb, err := m.PoolB.ReservesFor(ctx, m.Token0)
	if err != nil {
		return model.VenueQuotes{}, readErr(m.VenueB.Name+" reserves", err)
	}
	return model.VenueQuotes{
		PrimaryReserves:   ra,
		SecondaryReserves: rb,
		Primary:           model.NewExchangeQuote(ra, st.Decimals0, st.Decimals1),
		Secondary:         model.NewExchangeQuote(rb, st.Decimals0, st.Decimals1),
	}, nil
}

// ReferencePrice returns token0 per one unit of the reference asset, read from
// the token0/reference pool on venue.
func ReferencePrice(ctx context.Context, caller dex.Caller, venue *dex.Venue, token0, reference common.Address, decimals0 uint8) (decimal.Decimal, error) {
	if token0 == reference {
		return decimal.NewFromInt(1), nil
	}

	pool, err := openPool(ctx, caller, venue, token0, reference)
	if err != nil {
		return decimal.Zero, err
	}
	reserves, err := pool.ReservesFor(ctx, token0)
	if err != nil {
		return decimal.Zero, err
	}
	refDecimals, err := dex.TokenDecimals(ctx, caller, reference)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reference decimals: %w", err)
	}

	refAmount := units.ToReadable(reserves.TokenB, refDecimals)
	if refAmount.IsZero() {
		return decimal.Zero, fmt.Errorf("reference pool %s is empty", pool.Address.Hex())
	}
	return units.ToReadable(reserves.TokenA, decimals0).Div(refAmount), nil
}
