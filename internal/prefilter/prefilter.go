// Package prefilter picks pairs from a snapshot whose prices diverge enough
// between the two venues to be worth watching.
package prefilter

import (
	"context"
	"math"

	"go.uber.org/zap"

	"dexArb/internal/model"
	"dexArb/internal/storage"
)

// Default thresholds.
const (
	DefaultAmountThreshold = 1.0
	DefaultRatioThreshold  = 0.9
)

// Thresholds bound the candidate selection.
type Thresholds struct {
	// Amount is the minimum readable reserve for every token on both venues.
	Amount float64
	// Ratio is the maximum min/max price ratio.
	Ratio float64
}

// IsArbitragable reports whether both venues quote a price, every reserve is
// at least the amount threshold and the cheaper price is at most ratio times
// the dearer one.
func IsArbitragable(a, b model.VenueStats, th Thresholds) bool {
	if a.Price == 0 || b.Price == 0 {
		return false
	}
	for _, amount := range []float64{a.Token0.Amount, a.Token1.Amount, b.Token0.Amount, b.Token1.Amount} {
		if amount < th.Amount {
			return false
		}
	}
	return math.Min(a.Price, b.Price)/math.Max(a.Price, b.Price) <= th.Ratio
}

// Result counts a scan.
type Result struct {
	Scanned    int
	Candidates int
}

// Scan reads snapshots from in and writes every candidate to out.
func Scan(ctx context.Context, in string, out storage.Storage, th Thresholds, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		res   Result
		batch []model.PairSnapshot
	)
	err := storage.ReadSnapshots(in, func(snap model.PairSnapshot) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Scanned++
		if !IsArbitragable(snap.A, snap.B, th) {
			return nil
		}
		logger.Debug("candidate",
			zap.String("name", snap.Name),
			zap.Float64("price_a", snap.A.Price),
			zap.Float64("price_b", snap.B.Price),
		)
		batch = append(batch, snap)
		return nil
	})
	if err != nil {
		return res, err
	}

	if err := out.PutSnapshots(ctx, batch); err != nil {
		return res, err
	}
	res.Candidates = len(batch)
	return res, nil
}
