package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/icscrawl"
	"github.com/fwojciec/icscrawl/fs"
	icshttp "github.com/fwojciec/icscrawl/http"
	icsslog "github.com/fwojciec/icscrawl/slog"
	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Downloader replaces the HTTP downloader for end-to-end testing.
	Downloader icscrawl.Downloader
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("icscrawl"),
		kong.Description("Crawl the UCI ICS subdomains and report word and page statistics"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Configuration(kong.JSON),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'icscrawl --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, cli.LogLevel)
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:         ctx,
		Stdout:      stdout,
		Stderr:      stderr,
		Logger:      logger,
		Checkpoints: icsslog.NewLoggingCheckpointStore(fs.NewCheckpointStore(cli.Checkpoint), logger),
	}

	if kongCtx.Command() == "crawl" {
		downloader := m.Downloader
		if downloader == nil {
			opts := []icshttp.Option{icshttp.WithUserAgent(cli.Crawl.UserAgent)}
			if cli.Crawl.CacheServer != "" {
				opts = append(opts, icshttp.WithCacheServer(cli.Crawl.CacheServer))
			}
			downloader = icshttp.NewDownloader(opts...)
		}
		deps.Downloader = icsslog.NewLoggingDownloader(downloader, logger)
	}

	return kongCtx.Run(deps)
}

// newLogger returns a text logger on w that tags every record with a
// fresh run id.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, icscrawl.Errorf(icscrawl.EINVALID, "invalid log level %q", level)
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler).With("run", uuid.NewString()), nil
}
