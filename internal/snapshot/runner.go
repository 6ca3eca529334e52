package snapshot

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"dexArb/internal/dex"
	"dexArb/internal/model"
	"dexArb/internal/storage"
)

// RunConfig holds runtime settings for a snapshot run.
type RunConfig struct {
	VenueAName string
	VenueBName string
	RouterA    common.Address
	RouterB    common.Address
	// Count caps the number of factory indices visited. Zero means all.
	Count        uint64
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
	// RateLimit caps eth_call requests per second. Zero disables the limit.
	RateLimit     float64
	MetaCacheSize int
}

// Backend is the node surface a snapshot run needs.
type Backend interface {
	dex.Caller
	ChainID(ctx context.Context) (*big.Int, error)
}

// Runner walks the smaller factory's pair list, finds each pair on the other
// venue and writes one snapshot per shared pair.
type Runner struct {
	cfg      RunConfig
	backend  Backend
	caller   dex.Caller
	tokens   *dex.TokenMetaCache
	storage  storage.Storage
	progress Progress
	retry    retryPolicy
	logger   *zap.Logger
	runID    string
	now      func() time.Time
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, backend Backend, sink storage.Storage, progress Progress, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if sink == nil {
		return nil, fmt.Errorf("storage is nil")
	}
	if cfg.BatchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if progress == nil {
		progress = NewCheckpointStore("", false)
	}
	if cfg.MetaCacheSize <= 0 {
		cfg.MetaCacheSize = 4096
	}

	var caller dex.Caller = backend
	if cfg.RateLimit > 0 {
		caller = &limitedCaller{
			next:    backend,
			limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		}
	}
	tokens, err := dex.NewTokenMetaCache(cfg.MetaCacheSize, caller, logger)
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:      cfg,
		backend:  backend,
		caller:   caller,
		tokens:   tokens,
		storage:  sink,
		progress: progress,
		retry:    retryPolicy{maxRetries: cfg.MaxRetries, baseDelay: cfg.RetryBackoff, logger: logger},
		logger:   logger,
		runID:    uuid.NewString(),
		now:      time.Now,
	}, nil
}

// RunID identifies the snapshots written by this runner.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes the snapshot walk.
func (r *Runner) Run(ctx context.Context) error {
	chainID, err := r.backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}

	venueA, err := r.openVenue(ctx, r.cfg.VenueAName, r.cfg.RouterA)
	if err != nil {
		return err
	}
	venueB, err := r.openVenue(ctx, r.cfg.VenueBName, r.cfg.RouterB)
	if err != nil {
		return err
	}

	lenA, err := r.pairsLength(ctx, venueA)
	if err != nil {
		return err
	}
	lenB, err := r.pairsLength(ctx, venueB)
	if err != nil {
		return err
	}

	w := walk{chainID: chainID.Uint64(), a: venueA, source: venueA, target: venueB, total: lenA}
	if lenA > lenB {
		w.source, w.target, w.total = venueB, venueA, lenB
	}
	if r.cfg.Count > 0 && w.total > r.cfg.Count {
		w.total = r.cfg.Count
	}

	var from uint64
	last, ok, err := r.progress.Load(ctx)
	if err != nil {
		return err
	}
	if ok {
		from = last + 1
		r.logger.Info("resume from checkpoint", zap.Uint64("last_index", last), zap.Uint64("from", from))
	}

	if w.total == 0 || from >= w.total {
		r.logger.Info("nothing to snapshot", zap.Uint64("from", from), zap.Uint64("total", w.total))
		return nil
	}

	r.logger.Info("loading exchange stats",
		zap.String("run_id", r.runID),
		zap.String("source", w.source.Name),
		zap.String("target", w.target.Name),
		zap.Uint64("pairs", w.total),
	)

	ranges, err := SplitRange(from, w.total-1, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, idxRange := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}

		records := make([]model.PairSnapshot, 0, idxRange.To-idxRange.From+1)
		for idx := idxRange.From; idx <= idxRange.To; idx++ {
			snap, found, err := r.snapshotWithRetry(ctx, w, idx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Warn("pair skipped", zap.Uint64("index", idx), zap.Error(err))
				continue
			}
			if found {
				records = append(records, snap)
			}
		}

		if err := r.storage.PutSnapshots(ctx, records); err != nil {
			return fmt.Errorf("store snapshots: %w", err)
		}
		if err := r.progress.Save(ctx, idxRange.To); err != nil {
			return err
		}

		r.logger.Info("batch complete", zap.Int("shared", len(records)), zap.Uint64("from", idxRange.From), zap.Uint64("to", idxRange.To))
	}

	return nil
}

type walk struct {
	chainID uint64
	a       *dex.Venue
	// source is the venue with fewer pairs; its factory list is walked.
	source *dex.Venue
	target *dex.Venue
	total  uint64
}

func (r *Runner) openVenue(ctx context.Context, name string, router common.Address) (*dex.Venue, error) {
	var venue *dex.Venue
	err := r.retry.do(ctx, "open venue", func(ctx context.Context) error {
		var err error
		venue, err = dex.NewVenue(ctx, r.caller, name, router)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("open venue %s: %w", name, err)
	}
	return venue, nil
}

func (r *Runner) pairsLength(ctx context.Context, venue *dex.Venue) (uint64, error) {
	var n uint64
	err := r.retry.do(ctx, "pairs length", func(ctx context.Context) error {
		var err error
		n, err = venue.PairsLength(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s pairs length: %w", venue.Name, err)
	}
	return n, nil
}

func (r *Runner) snapshotWithRetry(ctx context.Context, w walk, idx uint64) (model.PairSnapshot, bool, error) {
	var (
		snap  model.PairSnapshot
		found bool
	)
	err := r.retry.do(ctx, "snapshot pair", func(ctx context.Context) error {
		var err error
		snap, found, err = r.snapshotPair(ctx, w, idx)
		return err
	})
	return snap, found, err
}

func (r *Runner) snapshotPair(ctx context.Context, w walk, idx uint64) (model.PairSnapshot, bool, error) {
	sourceAddr, err := w.source.PairAt(ctx, idx)
	if err != nil {
		return model.PairSnapshot{}, false, fmt.Errorf("pair at %d: %w", idx, err)
	}
	sourcePool, err := dex.NewPool(ctx, r.caller, sourceAddr)
	if err != nil {
		return model.PairSnapshot{}, false, fmt.Errorf("pool %s: %w", sourceAddr.Hex(), err)
	}

	targetAddr, err := w.target.PairFor(ctx, sourcePool.Token0, sourcePool.Token1)
	if errors.Is(err, dex.ErrPairNotFound) {
		r.logger.Debug("pair not shared", zap.Uint64("index", idx), zap.String("pair", sourceAddr.Hex()))
		return model.PairSnapshot{}, false, nil
	}
	if err != nil {
		return model.PairSnapshot{}, false, err
	}
	targetPool, err := dex.NewPool(ctx, r.caller, targetAddr)
	if err != nil {
		return model.PairSnapshot{}, false, fmt.Errorf("pool %s: %w", targetAddr.Hex(), err)
	}

	meta0, err := r.tokens.Get(ctx, sourcePool.Token0)
	if err != nil {
		return model.PairSnapshot{}, false, fmt.Errorf("token0 meta: %w", err)
	}
	meta1, err := r.tokens.Get(ctx, sourcePool.Token1)
	if err != nil {
		return model.PairSnapshot{}, false, fmt.Errorf("token1 meta: %w", err)
	}

	sourceReserves, err := sourcePool.Reserves(ctx)
	if err != nil {
		return model.PairSnapshot{}, false, fmt.Errorf("reserves %s: %w", sourceAddr.Hex(), err)
	}
	targetReserves, err := targetPool.ReservesFor(ctx, sourcePool.Token0)
	if err != nil {
		return model.PairSnapshot{}, false, fmt.Errorf("reserves %s: %w", targetAddr.Hex(), err)
	}

	source := buildVenueStats(w.source.Name, sourceAddr, meta0, meta1, sourceReserves)
	target := buildVenueStats(w.target.Name, targetAddr, meta0, meta1, targetReserves)
	a, b := source, target
	if w.source != w.a {
		a, b = target, source
	}
	return buildSnapshot(r.runID, w.chainID, idx, meta0, meta1, a, b, r.now()), true, nil
}

// limitedCaller spaces eth_call requests to the configured rate.
type limitedCaller struct {
	next    dex.Caller
	limiter *rate.Limiter
}

func (c *limitedCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.next.CallContract(ctx, msg, block)
}
