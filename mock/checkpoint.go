package mock

import (
	"context"

	"github.com/fwojciec/icscrawl"
)

var _ icscrawl.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore is a mock implementation of icscrawl.CheckpointStore.
type CheckpointStore struct {
	LoadFn func(ctx context.Context) (*icscrawl.Checkpoint, error)
	SaveFn func(ctx context.Context, cp *icscrawl.Checkpoint) error
}

func (s *CheckpointStore) Load(ctx context.Context) (*icscrawl.Checkpoint, error) {
	return s.LoadFn(ctx)
}

func (s *CheckpointStore) Save(ctx context.Context, cp *icscrawl.Checkpoint) error {
	return s.SaveFn(ctx, cp)
}
