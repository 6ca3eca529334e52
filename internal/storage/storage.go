package storage

import (
	"context"

	"dexArb/internal/model"
)

// Storage defines a sink for pair snapshots.
type Storage interface {
	PutSnapshots(ctx context.Context, snapshots []model.PairSnapshot) error
}

// Fanout writes every batch to each sink in order and stops at the first error.
type Fanout []Storage

func (f Fanout) PutSnapshots(ctx context.Context, snapshots []model.PairSnapshot) error {
	for _, sink := range f {
		if err := sink.PutSnapshots(ctx, snapshots); err != nil {
			return err
		}
	}
	return nil
}
