package model

import "math/big"

// GasQuote holds three gas price tiers in wei per gas unit.
type GasQuote struct {
	Low    *big.Int
	Medium *big.Int
	High   *big.Int
}

// UniformGasQuote uses one price for every tier.
func UniformGasQuote(price *big.Int) GasQuote {
	return GasQuote{
		Low:    new(big.Int).Set(price),
		Medium: new(big.Int).Set(price),
		High:   new(big.Int).Set(price),
	}
}

// IsZero reports whether the quote carries no usable price.
func (q GasQuote) IsZero() bool {
	return q.High == nil || q.High.Sign() == 0
}
