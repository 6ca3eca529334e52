package model

import "github.com/shopspring/decimal"

// Direction says which venue sells token1 first.
type Direction int

const (
	// AToB buys token1 on venue A and sells it on venue B.
	AToB Direction = iota
	// BToA is the reverse route.
	BToA
)

func (d Direction) String() string {
	if d == AToB {
		return "a_to_b"
	}
	return "b_to_a"
}

// Forward reports whether the direction is AToB.
func (d Direction) Forward() bool {
	return d == AToB
}

// DirectionFromForward maps a contract boolean to a Direction.
func DirectionFromForward(forward bool) Direction {
	if forward {
		return AToB
	}
	return BToA
}

// Opportunity is a candidate trade. AmountIn is expressed in token0 units for
// the normal strategy and token1 units for the flash strategy; ExpectedProfit
// is always net of gas in token0 units.
type Opportunity struct {
	Direction      Direction
	AmountIn       decimal.Decimal
	ExpectedProfit decimal.Decimal
}
