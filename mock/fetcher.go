package mock

import (
	"context"

	"github.com/fwojciec/icscrawl"
)

var _ icscrawl.Downloader = (*Downloader)(nil)

// Downloader is a mock implementation of icscrawl.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, url string) *icscrawl.Response
}

func (d *Downloader) Download(ctx context.Context, url string) *icscrawl.Response {
	return d.DownloadFn(ctx, url)
}
