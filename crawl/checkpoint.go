package crawl

import (
	"context"
	"log/slog"

	"github.com/fwojciec/icscrawl"
)

// RestoreCheckpoint loads the last checkpoint from store into stats.
// A missing checkpoint is a cold start; an unreadable one is logged and
// ignored. It never fails the crawl and reports whether state was restored.
func RestoreCheckpoint(ctx context.Context, store icscrawl.CheckpointStore, stats *Stats, logger *slog.Logger) bool {
	if logger == nil {
		logger = discardLogger
	}

	cp, err := store.Load(ctx)
	switch {
	case icscrawl.ErrorCode(err) == icscrawl.ENOTFOUND:
		logger.Info("no previous checkpoint, starting fresh crawl")
		return false
	case err != nil:
		logger.Warn("checkpoint unreadable, starting fresh crawl", "err", err)
		return false
	}

	stats.Restore(cp)
	logger.Info("previous crawl state loaded",
		"pages", len(cp.VisitedURLs),
		"words", len(cp.WordCounts),
		"longest", cp.LongestPage.URL,
	)
	return true
}
