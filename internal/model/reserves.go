package model

import (
	"math/big"

	"dexArb/internal/units"
)

// PairReserves holds the raw pool balances of the configured pair, oriented so
// TokenA is the configured token0 and TokenB the configured token1.
type PairReserves struct {
	TokenA *big.Int
	TokenB *big.Int
}

// Flip returns the reserves with both sides swapped.
func (r PairReserves) Flip() PairReserves {
	return PairReserves{TokenA: r.TokenB, TokenB: r.TokenA}
}

// ExchangeQuote is a decimal-adjusted view of one venue's reserves.
type ExchangeQuote struct {
	Price          float64 `json:"price"`
	TokenAReadable float64 `json:"tokenA"`
	TokenBReadable float64 `json:"tokenB"`
}

// NewExchangeQuote converts raw reserves using the token decimals. The price is
// B per A and is zero when the A side is empty.
func NewExchangeQuote(r PairReserves, decimalsA, decimalsB uint8) ExchangeQuote {
	a := units.ToReadable(r.TokenA, decimalsA).InexactFloat64()
	b := units.ToReadable(r.TokenB, decimalsB).InexactFloat64()

	quote := ExchangeQuote{TokenAReadable: a, TokenBReadable: b}
	if a != 0 {
		quote.Price = b / a
	}
	return quote
}

// VenueQuotes carries one reading of both venues. Primary is venue A (router0)
// and Secondary is venue B (router1).
type VenueQuotes struct {
	PrimaryReserves   PairReserves
	SecondaryReserves PairReserves
	Primary           ExchangeQuote
	Secondary         ExchangeQuote
}
