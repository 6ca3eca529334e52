package engine

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dexArb/internal/dex"
)

func TestThrottleWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	th := NewThrottle(10*time.Second, func() time.Time { return now })

	assert.True(t, th.Allow())
	now = now.Add(9999 * time.Millisecond)
	assert.False(t, th.Allow())
	now = now.Add(time.Millisecond)
	assert.True(t, th.Allow())

	now = now.Add(time.Second)
	assert.False(t, th.Allow())
	th.Reset()
	assert.True(t, th.Allow())
}

func TestLoopThrottlesNoOpportunityLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := newNormalFixture(t, normalOptions{balance: "100", logger: zap.New(core)})
	ctx := context.Background()

	f.chain.SetReserves(pairB, amount("2000"), amount("1000"))
	assert.Equal(t, OutcomeNoOpportunity, f.loop.Step(ctx))
	assert.Equal(t, OutcomeNoOpportunity, f.loop.Step(ctx))
	assert.Equal(t, 1, logs.FilterMessage("no arbitrage").Len())

	f.chain.SetReserves(pairB, amount("2100"), amount("1000"))
	assert.Equal(t, OutcomeTraded, f.loop.Step(ctx))

	f.chain.SetReserves(pairB, amount("2000"), amount("1000"))
	assert.Equal(t, OutcomeNoOpportunity, f.loop.Step(ctx))
	assert.Equal(t, 2, logs.FilterMessage("no arbitrage").Len())
}

func TestLoopInitEmitsAccount(t *testing.T) {
	f := newNormalFixture(t, normalOptions{balance: "42"})

	require.Len(t, f.recorder.accounts, 1)
	assert.Equal(t, contract.Hex(), f.recorder.accounts[0].Address)
	assert.Equal(t, token0.Hex(), f.recorder.accounts[0].Currency)

	st := f.loop.State()
	assert.Equal(t, uint8(18), st.Decimals0)
	assert.Equal(t, uint8(18), st.Decimals1)
	assert.Equal(t, "1", st.RefPrice.String())
	assert.Equal(t, amount("42"), st.Balance)
}

func TestLoopRunStopsOnCancel(t *testing.T) {
	f := newNormalFixture(t, normalOptions{balance: "100"})
	f.chain.SetReserves(pairB, amount("2000"), amount("1000"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.loop.Run(ctx) }()

	time.Sleep(250 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Empty(t, f.submitter.requests)
}

func TestReferencePrice(t *testing.T) {
	ctx := context.Background()
	f := newNormalFixture(t, normalOptions{balance: "1"})

	price, err := ReferencePrice(ctx, f.chain, f.venueA, token0, token0, 18)
	require.NoError(t, err)
	assert.Equal(t, "1", price.String())

	refPair := pairA
	refPair[19] = 0xff
	f.chain.AddToken(refToken, 8, "REF")
	f.chain.AddPool(factoryA, refPair, refToken, token0, big.NewInt(200_000_000), amount("600"))

	price, err = ReferencePrice(ctx, f.chain, f.venueA, token0, refToken, 18)
	require.NoError(t, err)
	assert.Equal(t, "300", price.String())

	_, err = ReferencePrice(ctx, f.chain, f.venueA, token1, refToken, 18)
	assert.ErrorIs(t, err, dex.ErrPairNotFound)
}
