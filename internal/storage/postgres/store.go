package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dexArb/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pair_snapshots (
	chain_id       BIGINT           NOT NULL,
	pair_a         TEXT             NOT NULL,
	pair_b         TEXT             NOT NULL,
	pair_index     BIGINT           NOT NULL,
	name           TEXT             NOT NULL,
	run_id         TEXT             NOT NULL,
	venue_a        TEXT             NOT NULL,
	venue_b        TEXT             NOT NULL,
	token0         TEXT             NOT NULL,
	token1         TEXT             NOT NULL,
	price_a        DOUBLE PRECISION NOT NULL,
	price_b        DOUBLE PRECISION NOT NULL,
	reserve0_a     DOUBLE PRECISION NOT NULL,
	reserve1_a     DOUBLE PRECISION NOT NULL,
	reserve0_b     DOUBLE PRECISION NOT NULL,
	reserve1_b     DOUBLE PRECISION NOT NULL,
	captured_at    TIMESTAMPTZ      NOT NULL,
	updated_at     TIMESTAMPTZ      NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pair_a, pair_b)
);
CREATE TABLE IF NOT EXISTS snapshot_state (
	name        TEXT        PRIMARY KEY,
	last_index  BIGINT      NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for pair snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the snapshot tables when they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// PutSnapshots inserts or refreshes one row per shared pair.
func (s *Store) PutSnapshots(ctx context.Context, snapshots []model.PairSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		capturedAt, err := time.Parse(time.RFC3339Nano, snap.CapturedAt)
		if err != nil {
			return fmt.Errorf("snapshot %s captured_at: %w", snap.Name, err)
		}
		batch.Queue(`
			INSERT INTO pair_snapshots (
				chain_id, pair_a, pair_b, pair_index, name, run_id, venue_a, venue_b, token0, token1,
				price_a, price_b, reserve0_a, reserve1_a, reserve0_b, reserve1_b, captured_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now())
			ON CONFLICT (chain_id, pair_a, pair_b)
			DO UPDATE SET
				pair_index = EXCLUDED.pair_index,
				name = EXCLUDED.name,
				run_id = EXCLUDED.run_id,
				price_a = EXCLUDED.price_a,
				price_b = EXCLUDED.price_b,
				reserve0_a = EXCLUDED.reserve0_a,
				reserve1_a = EXCLUDED.reserve1_a,
				reserve0_b = EXCLUDED.reserve0_b,
				reserve1_b = EXCLUDED.reserve1_b,
				captured_at = EXCLUDED.captured_at,
				updated_at = now()
		`,
			int64(snap.ChainID),
			snap.A.Pair,
			snap.B.Pair,
			int64(snap.Index),
			snap.Name,
			snap.RunID,
			snap.A.Venue,
			snap.B.Venue,
			snap.A.Token0.Address,
			snap.A.Token1.Address,
			snap.A.Price,
			snap.B.Price,
			snap.A.Token0.Amount,
			snap.A.Token1.Amount,
			snap.B.Token0.Amount,
			snap.B.Token1.Amount,
			capturedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the last processed pair index for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var last int64
	row := s.pool.QueryRow(ctx, `SELECT last_index FROM snapshot_state WHERE name=$1`, name)
	if err := row.Scan(&last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(last), true, nil
}

// SaveState upserts the last processed pair index for a name.
func (s *Store) SaveState(ctx context.Context, name string, last uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO snapshot_state (name, last_index, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_index = EXCLUDED.last_index, updated_at = now()
	`, name, int64(last))
	return err
}

// Progress adapts the state table to a named resumable cursor.
type Progress struct {
	store *Store
	name  string
}

func (s *Store) Progress(name string) *Progress {
	return &Progress{store: s, name: name}
}

func (p *Progress) Load(ctx context.Context) (uint64, bool, error) {
	return p.store.LoadState(ctx, p.name)
}

func (p *Progress) Save(ctx context.Context, last uint64) error {
	return p.store.SaveState(ctx, p.name, last)
}
