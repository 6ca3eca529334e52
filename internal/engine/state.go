package engine

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"dexArb/internal/units"
)

// DefaultLogThrottle spaces out repeated no-opportunity log lines.
const DefaultLogThrottle = 10 * time.Second

// State is owned by one loop and passed to the strategy on every call.
type State struct {
	Decimals0 uint8
	Decimals1 uint8
	// RefPrice is token0 per one unit of the reference asset. Zero when unknown.
	RefPrice decimal.Decimal
	// Balance is the execution contract's token0 balance, raw units.
	Balance  *big.Int
	Throttle *Throttle
}

// NewState returns an empty state with a throttle of the given window.
func NewState(window time.Duration) *State {
	return &State{
		RefPrice: decimal.Zero,
		Balance:  new(big.Int),
		Throttle: NewThrottle(window, nil),
	}
}

// BalanceReadable is the balance snapshot in token0 units.
func (s *State) BalanceReadable() decimal.Decimal {
	return units.ToReadable(s.Balance, s.Decimals0)
}

// Throttle limits how often a repeated condition is logged.
type Throttle struct {
	window time.Duration
	last   time.Time
	now    func() time.Time
}

func NewThrottle(window time.Duration, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{window: window, now: now}
}

// Allow reports whether a line may be logged now and records it if so.
func (t *Throttle) Allow() bool {
	now := t.now()
	if t.last.IsZero() || now.Sub(t.last) >= t.window {
		t.last = now
		return true
	}
	return false
}

// Reset lets the next line through immediately.
func (t *Throttle) Reset() {
	t.last = time.Time{}
}
