package engine

import (
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"dexArb/internal/model"
)

func quote(a, b float64) model.ExchangeQuote {
	q := model.ExchangeQuote{TokenAReadable: a, TokenBReadable: b}
	if a != 0 {
		q.Price = b / a
	}
	return q
}

func TestDiffPriceAndSize(t *testing.T) {
	p := quote(1000, 2000)
	s := quote(1000, 2100)

	diff := DiffPrice(p, s)
	assert.InDelta(t, -0.1, diff, 1e-12)
	assert.False(t, PricesAligned(diff))
	assert.InDelta(t, 12.195121951219512, TradeAmount(p, s, diff > 0), 1e-12)
}

func TestPricesAligned(t *testing.T) {
	assert.True(t, PricesAligned(DiffPrice(quote(1000, 2000), quote(1000, 2000))))
	assert.True(t, PricesAligned(5e-10))
	assert.True(t, PricesAligned(-5e-10))
	assert.False(t, PricesAligned(2e-9))
}

func TestTradeAmountAntisymmetric(t *testing.T) {
	cases := [][2]model.ExchangeQuote{
		{quote(1000, 2000), quote(1000, 2100)},
		{quote(500, 1600), quote(800, 2400)},
		{quote(12.5, 40), quote(13, 39)},
	}
	for _, c := range cases {
		p, s := c[0], c[1]
		forward := DiffPrice(p, s) > 0
		mirrored := DiffPrice(s, p) > 0
		assert.NotEqual(t, forward, mirrored)

		a := TradeAmount(p, s, forward)
		b := TradeAmount(s, p, mirrored)
		assert.Greater(t, a, 0.0)
		assert.InDelta(t, a, b, 1e-9*math.Max(1, a))
	}
}

func TestNetProfitMonotoneInGasPrice(t *testing.T) {
	gross := decimal.RequireFromString("0.25")
	ref := decimal.RequireFromString("300")
	last := NetProfit(gross, 250_000, big.NewInt(0), ref)
	assert.True(t, last.Equal(gross))

	for _, price := range []int64{1, 1_000_000, 1_000_000_000, 3_000_000_000, 50_000_000_000} {
		net := NetProfit(gross, 250_000, big.NewInt(price), ref)
		assert.True(t, net.LessThan(last), "price %d", price)
		last = net
	}
}

func TestGasCost(t *testing.T) {
	cost := GasCost(200_000, big.NewInt(5_000_000_000), decimal.RequireFromString("250"))
	assert.True(t, cost.Equal(decimal.RequireFromString("0.25")), cost.String())
	assert.True(t, GasCost(200_000, big.NewInt(5_000_000_000), decimal.Zero).IsZero())
	assert.True(t, GasCost(200_000, nil, decimal.NewFromInt(1)).IsZero())
}

func TestShortfall(t *testing.T) {
	got := Shortfall(decimal.RequireFromString("12.195"), decimal.NewFromInt(5))
	assert.True(t, got.Equal(decimal.RequireFromString("7.295")))
}
