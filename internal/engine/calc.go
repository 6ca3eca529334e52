package engine

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"dexArb/internal/model"
	"dexArb/internal/units"
)

const (
	priceEpsilon = 1e-9
	dustAmount   = 1e-9
	amountPlaces = 6
)

var fundingBuffer = decimal.RequireFromString("0.1")

// DiffPrice is venue A's token1/token0 price minus venue B's.
func DiffPrice(a, b model.ExchangeQuote) float64 {
	return a.Price - b.Price
}

// PricesAligned reports whether a price difference is too small to trade.
func PricesAligned(diff float64) bool {
	return math.Abs(diff) < priceEpsilon
}

// TradeAmount sizes a trade in token0 units. The formula halves the reserve
// imbalance and is not the exact constant-product optimum.
func TradeAmount(a, b model.ExchangeQuote, forward bool) float64 {
	p0, p1 := a.TokenAReadable, a.TokenBReadable
	s0, s1 := b.TokenAReadable, b.TokenBReadable
	if forward {
		return (p1*s0 - p0*s1) / (p1 + s1) / 2
	}
	return (p0*s1 - p1*s0) / (p1 + s1) / 2
}

// GasCost converts gasLimit*gasPrice into token0 using the reference price.
func GasCost(gasLimit uint64, gasPrice *big.Int, refPrice decimal.Decimal) decimal.Decimal {
	if gasPrice == nil {
		return decimal.Zero
	}
	wei := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), gasPrice)
	return units.WeiToEther(wei).Mul(refPrice)
}

// NetProfit subtracts the gas cost from a gross token0 profit.
func NetProfit(gross decimal.Decimal, gasLimit uint64, gasPrice *big.Int, refPrice decimal.Decimal) decimal.Decimal {
	return gross.Sub(GasCost(gasLimit, gasPrice, refPrice))
}

// Shortfall is the funding transfer needed to trade required with balance on hand.
func Shortfall(required, balance decimal.Decimal) decimal.Decimal {
	return required.Sub(balance).Add(fundingBuffer)
}
