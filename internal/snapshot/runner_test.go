package snapshot

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dexArb/internal/dex"
	"dexArb/internal/dex/dextest"
	"dexArb/internal/model"
)

var (
	wbnb = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	usdt = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	cake = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	eth  = common.HexToAddress("0x00000000000000000000000000000000000000a3")

	routerA  = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	factoryA = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	routerB  = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	factoryB = common.HexToAddress("0x00000000000000000000000000000000000000c1")

	pairA1 = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	pairA2 = common.HexToAddress("0x00000000000000000000000000000000000000b3")
	pairA3 = common.HexToAddress("0x00000000000000000000000000000000000000b4")
	pairB1 = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	pairB2 = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

type testBackend struct {
	*dextest.Chain
}

func (testBackend) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(56), nil
}

type memorySink struct {
	snapshots []model.PairSnapshot
}

func (m *memorySink) PutSnapshots(_ context.Context, snapshots []model.PairSnapshot) error {
	m.snapshots = append(m.snapshots, snapshots...)
	return nil
}

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

// newTestChain lists three pools on venue A and two on venue B. Only
// WBNB/USDT is on both, and venue B stores it as USDT/WBNB.
func newTestChain() *dextest.Chain {
	chain := dextest.New()
	chain.AddToken(wbnb, 18, "WBNB")
	chain.AddToken(usdt, 18, "USDT")
	chain.AddToken(cake, 18, "CAKE")
	chain.AddToken(eth, 18, "ETH")
	chain.AddVenue(routerA, factoryA)
	chain.AddVenue(routerB, factoryB)

	chain.AddPool(factoryA, pairA1, wbnb, usdt, e18(10), e18(3000))
	chain.AddPool(factoryA, pairA2, wbnb, cake, e18(10), e18(500))
	chain.AddPool(factoryA, pairA3, cake, eth, e18(100), e18(1))
	chain.AddPool(factoryB, pairB1, usdt, wbnb, e18(3100), e18(10))
	chain.AddPool(factoryB, pairB2, wbnb, eth, e18(10), e18(2))
	return chain
}

func testConfig() RunConfig {
	return RunConfig{
		VenueAName:   "PancakeSwap",
		VenueBName:   "SushiSwap",
		RouterA:      routerA,
		RouterB:      routerB,
		BatchSize:    10,
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	}
}

func TestRunnerWalksSmallerFactory(t *testing.T) {
	sink := &memorySink{}
	progress := NewCheckpointStore(filepath.Join(t.TempDir(), "cp.json"), true)
	runner, err := NewRunner(testConfig(), testBackend{newTestChain()}, sink, progress, nil)
	require.NoError(t, err)

	require.NoError(t, runner.Run(context.Background()))
	require.Len(t, sink.snapshots, 1)

	snap := sink.snapshots[0]
	assert.Equal(t, runner.RunID(), snap.RunID)
	assert.Equal(t, uint64(56), snap.ChainID)
	assert.Equal(t, uint64(0), snap.Index)
	assert.Equal(t, "USDT/WBNB", snap.Name)

	assert.Equal(t, "PancakeSwap", snap.A.Venue)
	assert.Equal(t, pairA1.Hex(), snap.A.Pair)
	assert.Equal(t, usdt.Hex(), snap.A.Token0.Address)
	assert.Equal(t, 3000.0, snap.A.Token0.Amount)
	assert.Equal(t, 10.0, snap.A.Token1.Amount)
	assert.InDelta(t, 10.0/3000.0, snap.A.Price, 1e-15)

	assert.Equal(t, "SushiSwap", snap.B.Venue)
	assert.Equal(t, pairB1.Hex(), snap.B.Pair)
	assert.Equal(t, 3100.0, snap.B.Token0.Amount)
	assert.InDelta(t, 10.0/3100.0, snap.B.Price, 1e-15)

	last, ok, err := progress.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), last)
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	progress := NewCheckpointStore(filepath.Join(t.TempDir(), "cp.json"), true)
	require.NoError(t, progress.Save(ctx, 0))

	runner, err := NewRunner(testConfig(), testBackend{newTestChain()}, sink, progress, nil)
	require.NoError(t, err)
	require.NoError(t, runner.Run(ctx))
	assert.Empty(t, sink.snapshots)

	require.NoError(t, progress.Save(ctx, 1))
	require.NoError(t, runner.Run(ctx))
	assert.Empty(t, sink.snapshots)
}

func TestRunnerCountLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Count = 1
	cfg.BatchSize = 1
	sink := &memorySink{}
	chain := newTestChain()

	parsed, err := dex.FactoryABI()
	require.NoError(t, err)
	var visited []int64
	chain.Handle(factoryB, parsed, "allPairs", func(args []interface{}) ([]interface{}, error) {
		idx := args[0].(*big.Int).Int64()
		visited = append(visited, idx)
		if idx != 0 {
			return nil, errors.New("unexpected index")
		}
		return []interface{}{pairB1}, nil
	})

	runner, err := NewRunner(cfg, testBackend{chain}, sink, nil, nil)
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background()))
	assert.Len(t, sink.snapshots, 1)
	assert.Equal(t, []int64{0}, visited)
}

func TestRunnerSkipsFailingPair(t *testing.T) {
	chain := newTestChain()
	parsed, err := dex.PairABI()
	require.NoError(t, err)
	chain.Fail(pairB1, parsed, "getReserves", errors.New("header not found"))

	sink := &memorySink{}
	progress := NewCheckpointStore(filepath.Join(t.TempDir(), "cp.json"), true)
	runner, err := NewRunner(testConfig(), testBackend{chain}, sink, progress, nil)
	require.NoError(t, err)

	require.NoError(t, runner.Run(context.Background()))
	assert.Empty(t, sink.snapshots)

	last, ok, err := progress.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), last)
}

func TestRunnerRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1000
	sink := &memorySink{}

	runner, err := NewRunner(cfg, testBackend{newTestChain()}, sink, nil, nil)
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background()))
	assert.Len(t, sink.snapshots, 1)
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner, err := NewRunner(testConfig(), testBackend{newTestChain()}, &memorySink{}, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, runner.Run(ctx), context.Canceled)
}

func TestRawPrice(t *testing.T) {
	assert.Equal(t, 0.0, rawPrice(model.PairReserves{TokenA: big.NewInt(0), TokenB: big.NewInt(5)}))
	assert.Equal(t, 2.5, rawPrice(model.PairReserves{TokenA: big.NewInt(2), TokenB: big.NewInt(5)}))
}
