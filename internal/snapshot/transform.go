package snapshot

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"dexArb/internal/dex"
	"dexArb/internal/model"
	"dexArb/internal/units"
)

func buildVenueStats(venue string, pair common.Address, meta0, meta1 dex.TokenMeta, reserves model.PairReserves) model.VenueStats {
	return model.VenueStats{
		Venue:  venue,
		Pair:   pair.Hex(),
		Price:  rawPrice(reserves),
		Token0: tokenStats(meta0, reserves.TokenA),
		Token1: tokenStats(meta1, reserves.TokenB),
	}
}

func tokenStats(meta dex.TokenMeta, reserve *big.Int) model.TokenStats {
	return model.TokenStats{
		Address:  meta.Address.Hex(),
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Amount:   units.Float(units.ToReadable(reserve, meta.Decimals)),
	}
}

// rawPrice is reserve1/reserve0 without decimal adjustment.
func rawPrice(reserves model.PairReserves) float64 {
	if reserves.TokenA == nil || reserves.TokenA.Sign() == 0 || reserves.TokenB == nil {
		return 0
	}
	price, _ := new(big.Float).Quo(new(big.Float).SetInt(reserves.TokenB), new(big.Float).SetInt(reserves.TokenA)).Float64()
	return price
}

func buildSnapshot(runID string, chainID, index uint64, meta0, meta1 dex.TokenMeta, a, b model.VenueStats, capturedAt time.Time) model.PairSnapshot {
	return model.PairSnapshot{
		RunID:      runID,
		ChainID:    chainID,
		Index:      index,
		Name:       meta0.Symbol + "/" + meta1.Symbol,
		A:          a,
		B:          b,
		CapturedAt: capturedAt.UTC().Format(time.RFC3339Nano),
	}
}
