package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/icscrawl"
)

// Ensure LoggingCheckpointStore implements icscrawl.CheckpointStore.
var _ icscrawl.CheckpointStore = (*LoggingCheckpointStore)(nil)

// LoggingCheckpointStore wraps a CheckpointStore with debug logging.
type LoggingCheckpointStore struct {
	next   icscrawl.CheckpointStore
	logger *slog.Logger
}

// NewLoggingCheckpointStore creates a new LoggingCheckpointStore.
func NewLoggingCheckpointStore(next icscrawl.CheckpointStore, logger *slog.Logger) *LoggingCheckpointStore {
	return &LoggingCheckpointStore{next: next, logger: logger}
}

// Load delegates to the wrapped store and logs the result.
func (s *LoggingCheckpointStore) Load(ctx context.Context) (cp *icscrawl.Checkpoint, err error) {
	defer func(begin time.Time) {
		pages := 0
		if cp != nil {
			pages = len(cp.VisitedURLs)
		}
		s.logger.Debug("checkpoint load",
			"pages", pages,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Load(ctx)
}

// Save delegates to the wrapped store and logs the result.
func (s *LoggingCheckpointStore) Save(ctx context.Context, cp *icscrawl.Checkpoint) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("checkpoint save",
			"pages", len(cp.VisitedURLs),
			"words", len(cp.WordCounts),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, cp)
}
