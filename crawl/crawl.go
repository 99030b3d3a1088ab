// Package crawl provides crawl coordination: the URL frontier, the worker
// pool that drains it, and the per-page scraping pipeline that filters and
// deduplicates pages before feeding their links back to the frontier.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/icscrawl"
	"golang.org/x/sync/errgroup"
)

// Frontier configuration.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 100000
	// frontierFalsePositiveRate is the false positive rate of the Bloom pre-check.
	frontierFalsePositiveRate = 0.01
)

// DefaultFrontierSize is the number of URLs a Frontier is sized for when
// the caller has no better estimate.
const DefaultFrontierSize = frontierExpectedURLs

// Crawler runs a fixed pool of workers over a frontier. Each worker
// repeatedly takes a URL, downloads it, scrapes it, queues the discovered
// links, marks the URL complete and sleeps for the politeness delay.
// A worker exits as soon as it finds the frontier empty.
type Crawler struct {
	Frontier    icscrawl.URLFrontier
	Downloader  icscrawl.Downloader
	Scraper     *Scraper
	RateLimiter icscrawl.DomainLimiter // optional
	Workers     int
	Delay       time.Duration
	Logger      *slog.Logger // optional
}

// Result holds the outcome of a crawl.
type Result struct {
	// Processed counts URLs by scrape outcome.
	Processed map[Outcome]int
	// LinksAdded counts links that were new to the frontier.
	LinksAdded int
	// Bytes is the total size of downloaded bodies.
	Bytes int64
	// FailedWorkers counts workers that stopped on an error.
	FailedWorkers int
}

// Total returns the number of processed URLs.
func (r *Result) Total() int {
	n := 0
	for _, v := range r.Processed {
		n += v
	}
	return n
}

// Run starts the workers and blocks until all of them have exited.
// A failing worker stops only itself; the first failure is returned after
// every worker has finished.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	workers := c.Workers
	if workers <= 0 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		result = Result{Processed: make(map[Outcome]int)}
	)
	record := func(p processed) {
		mu.Lock()
		defer mu.Unlock()
		result.Processed[p.outcome]++
		result.LinksAdded += p.added
		result.Bytes += int64(p.bytes)
	}

	// Plain group: one worker's error must not cancel the others.
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		id := i
		g.Go(func() error {
			err := c.runWorker(ctx, id, record)
			if err != nil {
				mu.Lock()
				result.FailedWorkers++
				mu.Unlock()
			}
			return err
		})
	}
	err := g.Wait()

	c.logger().Info("crawl finished",
		"processed", result.Total(),
		"links", result.LinksAdded,
		"bytes", result.Bytes,
		"failed_workers", result.FailedWorkers,
	)
	if err != nil {
		return &result, fmt.Errorf("worker failed: %w", err)
	}
	return &result, nil
}

// runWorker processes URLs until the frontier is empty or ctx is done.
// A panic while processing a URL ends this worker with an error.
func (c *Crawler) runWorker(ctx context.Context, id int, record func(processed)) (err error) {
	logger := c.logger().With("worker", id)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d: panic: %v", id, r)
			logger.Error("worker stopped", "err", err)
		}
	}()

	for {
		if ctx.Err() != nil {
			logger.Info("worker canceled")
			return nil
		}

		pageURL, ok := c.Frontier.Next()
		if !ok {
			logger.Info("frontier is empty, stopping worker")
			return nil
		}

		record(c.process(ctx, logger, pageURL))

		if err := c.Frontier.Complete(pageURL); err != nil {
			return fmt.Errorf("worker %d: %w", id, err)
		}

		if !sleep(ctx, c.Delay) {
			logger.Info("worker canceled")
			return nil
		}
	}
}

type processed struct {
	outcome Outcome
	added   int
	bytes   int
}

// process downloads and scrapes one URL and queues its links.
func (c *Crawler) process(ctx context.Context, logger *slog.Logger, pageURL string) processed {
	if c.RateLimiter != nil {
		if u, err := url.Parse(pageURL); err == nil {
			if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
				logger.Debug("rate limiter wait aborted", "url", pageURL, "err", err)
			}
		}
	}

	resp := c.Downloader.Download(ctx, pageURL)
	res := c.Scraper.Scrape(ctx, pageURL, resp)

	added := 0
	for _, link := range res.Links {
		ok, err := c.Frontier.Add(link)
		if err != nil {
			logger.Debug("dropping link", "link", link, "err", err)
			continue
		}
		if ok {
			added++
		}
	}

	logger.Info("processed",
		"url", pageURL,
		"status", resp.Status,
		"outcome", res.Outcome.String(),
		"links", len(res.Links),
		"new", added,
	)
	return processed{outcome: res.Outcome, added: added, bytes: len(resp.Body)}
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return discardLogger
	}
	return c.Logger
}

// sleep waits for d or until ctx is done.
// Returns false if ctx was done first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
