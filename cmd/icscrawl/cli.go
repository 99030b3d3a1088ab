package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/icscrawl"
	"github.com/fwojciec/icscrawl/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *slog.Logger
	Downloader  icscrawl.Downloader
	Checkpoints icscrawl.CheckpointStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config     kong.ConfigFlag `help:"Load flag values from a JSON file"`
	Checkpoint string          `default:"crawler_log.json" env:"ICSCRAWL_CHECKPOINT" help:"Checkpoint file path"`
	LogLevel   string          `name:"log-level" default:"info" enum:"debug,info,warn,error" env:"ICSCRAWL_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl the allowed subdomains from the seed URLs"`
	Report ReportCmd `cmd:"" help:"Summarize the analytics stored in the checkpoint"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Seeds         []string      `name:"seed" default:"https://www.ics.uci.edu,https://www.cs.uci.edu,https://www.informatics.uci.edu,https://www.stat.uci.edu" env:"ICSCRAWL_SEEDS" help:"Seed URL (repeatable)"`
	Workers       int           `short:"w" default:"1" env:"ICSCRAWL_WORKERS" help:"Number of crawl workers"`
	Delay         time.Duration `default:"500ms" env:"ICSCRAWL_DELAY" help:"Politeness delay after each request per worker"`
	CacheServer   string        `name:"cache-server" env:"ICSCRAWL_CACHE_SERVER" help:"Fetch pages through the cache server at host:port"`
	UserAgent     string        `name:"user-agent" default:"icscrawl/1.0" env:"ICSCRAWL_USER_AGENT" help:"User-Agent header sent with every request"`
	HostRPS       float64       `name:"host-rps" env:"ICSCRAWL_HOST_RPS" help:"Requests per second allowed per host across workers (0 disables)"`
	KeepStopwords bool          `name:"keep-stopwords" env:"ICSCRAWL_KEEP_STOPWORDS" help:"Count stopwords in word frequencies"`
}

// Validate checks the crawl configuration before any work starts.
func (c *CrawlCmd) Validate() error {
	if len(c.Seeds) == 0 {
		return icscrawl.Errorf(icscrawl.EINVALID, "at least one seed URL is required")
	}
	for _, seed := range c.Seeds {
		if _, err := crawl.NormalizeURL(seed); err != nil {
			return err
		}
	}
	if c.Workers < 1 {
		return icscrawl.Errorf(icscrawl.EINVALID, "workers must be at least 1, got %d", c.Workers)
	}
	if c.Delay < 0 {
		return icscrawl.Errorf(icscrawl.EINVALID, "delay must not be negative, got %s", c.Delay)
	}
	if c.HostRPS < 0 {
		return icscrawl.Errorf(icscrawl.EINVALID, "host-rps must not be negative, got %v", c.HostRPS)
	}
	return nil
}

// ReportCmd is the "report" subcommand.
type ReportCmd struct {
	Top int `default:"50" env:"ICSCRAWL_TOP" help:"Number of most common words to list"`
}
