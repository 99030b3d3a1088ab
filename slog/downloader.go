// Package slog provides logging decorators for icscrawl services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/icscrawl"
)

// Ensure LoggingDownloader implements icscrawl.Downloader.
var _ icscrawl.Downloader = (*LoggingDownloader)(nil)

// LoggingDownloader wraps a Downloader with per-request logging.
type LoggingDownloader struct {
	next   icscrawl.Downloader
	logger *slog.Logger
}

// NewLoggingDownloader creates a new LoggingDownloader.
func NewLoggingDownloader(next icscrawl.Downloader, logger *slog.Logger) *LoggingDownloader {
	return &LoggingDownloader{next: next, logger: logger}
}

// Download delegates to the wrapped downloader and logs the response.
// Failed downloads are logged at warn level.
func (d *LoggingDownloader) Download(ctx context.Context, url string) (resp *icscrawl.Response) {
	defer func(begin time.Time) {
		if resp == nil {
			return
		}
		level := slog.LevelInfo
		attrs := []any{
			"url", url,
			"status", resp.Status,
			"bytes", len(resp.Body),
			"duration", time.Since(begin),
		}
		if resp.Error != "" {
			level = slog.LevelWarn
			attrs = append(attrs, "err", resp.Error)
		}
		d.logger.Log(ctx, level, "download", attrs...)
	}(time.Now())
	return d.next.Download(ctx, url)
}
