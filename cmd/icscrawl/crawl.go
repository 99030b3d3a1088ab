package main

import (
	"fmt"
	"log/slog"

	"github.com/fwojciec/icscrawl"
	"github.com/fwojciec/icscrawl/crawl"
	"github.com/fwojciec/icscrawl/goquery"
	"github.com/fwojciec/icscrawl/tokenize"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var stopwords []string
	if !c.KeepStopwords {
		stopwords = tokenize.DefaultStopwords()
	}

	scraper := crawl.NewScraper(goquery.NewParser(), tokenize.NewTokenizer(stopwords))
	scraper.Checkpoints = deps.Checkpoints
	scraper.Logger = logger

	crawl.RestoreCheckpoint(deps.Ctx, deps.Checkpoints, scraper.Stats, logger)

	frontier := crawl.NewFrontier(crawl.DefaultFrontierSize)
	for _, seed := range c.Seeds {
		if _, err := frontier.Add(seed); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", icscrawl.ErrorMessage(err))
			return err
		}
	}

	crawler := &crawl.Crawler{
		Frontier:   frontier,
		Downloader: deps.Downloader,
		Scraper:    scraper,
		Workers:    c.Workers,
		Delay:      c.Delay,
		Logger:     logger,
	}
	if c.HostRPS > 0 {
		crawler.RateLimiter = crawl.NewDomainLimiter(c.HostRPS)
	}

	logger.Info("crawl started", "seeds", len(c.Seeds), "workers", c.Workers, "delay", c.Delay)

	result, err := crawler.Run(deps.Ctx)
	logger.Info("frontier drained",
		"discovered", frontier.Visited(),
		"completed", frontier.Completed(),
		"fingerprints", scraper.Index.Len(),
	)
	fmt.Fprintln(deps.Stdout, result.Summary())
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "%d unique pages recorded\n", scraper.Stats.Pages())
	return nil
}
