package crawl

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/icscrawl"
	"github.com/fwojciec/icscrawl/simhash"
)

// Page acceptance limits.
const (
	// MaxPageSize is the largest body, in bytes, that is parsed.
	MaxPageSize = 1 << 20
	// MinWordCount is the fewest words a page needs to be accepted.
	MinWordCount = 50
)

// Outcome is the decision the scraper reached for one page.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeRedirect
	OutcomeUnknownStatus
	OutcomeBadRedirect
	OutcomeNotOK
	OutcomeTooLarge
	OutcomeTrap
	OutcomeParseFailed
	OutcomeDuplicate
	OutcomeLowContent
)

var outcomeNames = map[Outcome]string{
	OutcomeAccepted:      "accepted",
	OutcomeRedirect:      "redirect",
	OutcomeUnknownStatus: "unknown_status",
	OutcomeBadRedirect:   "bad_redirect",
	OutcomeNotOK:         "not_ok",
	OutcomeTooLarge:      "too_large",
	OutcomeTrap:          "trap",
	OutcomeParseFailed:   "parse_failed",
	OutcomeDuplicate:     "duplicate",
	OutcomeLowContent:    "low_content",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// ScrapeResult holds the decision for a page and the links to follow.
type ScrapeResult struct {
	Outcome Outcome
	Links   []string
}

// Scraper decides what to do with a downloaded page: it rejects broken,
// oversized, trap, duplicate and low-content pages, records analytics for
// accepted pages, and returns the links to crawl next.
// It is safe for concurrent use.
type Scraper struct {
	Parser      icscrawl.Parser
	Tokenizer   icscrawl.Tokenizer
	Validator   *Validator
	Traps       *TrapDetector
	Index       *simhash.Index
	Stats       *Stats
	Checkpoints icscrawl.CheckpointStore // optional
	Logger      *slog.Logger             // optional

	// saveMu serializes snapshot+save so the last write holds every
	// accepted page.
	saveMu sync.Mutex
}

// NewScraper returns a Scraper with fresh analytics and the default
// validator and trap detector.
func NewScraper(parser icscrawl.Parser, tokenizer icscrawl.Tokenizer) *Scraper {
	return &Scraper{
		Parser:    parser,
		Tokenizer: tokenizer,
		Validator: NewValidator(),
		Traps:     NewTrapDetector(),
		Index:     simhash.NewIndex(),
		Stats:     NewStats(),
	}
}

// Scrape processes the response downloaded for pageURL.
func (s *Scraper) Scrape(ctx context.Context, pageURL string, resp *icscrawl.Response) ScrapeResult {
	logger := s.logger().With("url", pageURL)

	switch {
	case resp.Status < 100 || resp.Status > 599:
		logger.Debug("skipping unknown status", "status", resp.Status, "err", resp.Error)
		return ScrapeResult{Outcome: OutcomeUnknownStatus}
	case resp.Status >= 300 && resp.Status <= 399:
		return s.redirect(logger, pageURL, resp)
	case resp.Status != http.StatusOK || resp.Body == nil:
		logger.Debug("skipping failed response", "status", resp.Status, "err", resp.Error)
		return ScrapeResult{Outcome: OutcomeNotOK}
	}

	if len(resp.Body) > MaxPageSize {
		logger.Debug("skipping large page", "bytes", len(resp.Body))
		return ScrapeResult{Outcome: OutcomeTooLarge}
	}

	if s.Traps.IsTrap(pageURL) {
		logger.Debug("skipping crawler trap")
		return ScrapeResult{Outcome: OutcomeTrap}
	}

	doc, err := s.Parser.Parse(resp.Body)
	if err != nil {
		logger.Debug("skipping unparsable page", "err", err)
		return ScrapeResult{Outcome: OutcomeParseFailed}
	}

	if s.Index.Check(simhash.Fingerprint(doc.Text)) {
		logger.Debug("skipping duplicate page")
		return ScrapeResult{Outcome: OutcomeDuplicate}
	}

	words := len(strings.Fields(doc.Text))
	if words < MinWordCount {
		logger.Debug("skipping low-content page", "words", words)
		return ScrapeResult{Outcome: OutcomeLowContent}
	}

	s.accept(ctx, pageURL, doc.Text, words)

	return ScrapeResult{
		Outcome: OutcomeAccepted,
		Links:   s.discoverLinks(logger, pageURL, doc.Links),
	}
}

// redirect returns the redirect target as the only link. Content checks do
// not apply to redirects; the target must still pass the validator.
func (s *Scraper) redirect(logger *slog.Logger, pageURL string, resp *icscrawl.Response) ScrapeResult {
	location := resp.Location()
	if location == "" {
		logger.Debug("skipping redirect without location", "status", resp.Status)
		return ScrapeResult{Outcome: OutcomeBadRedirect}
	}

	target, err := resolveLink(pageURL, location)
	if err != nil {
		logger.Debug("skipping unparsable redirect", "location", location, "err", err)
		return ScrapeResult{Outcome: OutcomeBadRedirect}
	}
	if ok, err := s.Validator.Valid(target); err != nil || !ok {
		logger.Debug("skipping redirect outside crawl scope", "location", target, "err", err)
		return ScrapeResult{Outcome: OutcomeBadRedirect}
	}

	logger.Debug("following redirect", "location", target)
	return ScrapeResult{Outcome: OutcomeRedirect, Links: []string{target}}
}

// accept records analytics for a page and saves a checkpoint.
// Pages recorded before, including pages restored from a checkpoint, do
// not count their words twice.
func (s *Scraper) accept(ctx context.Context, pageURL, text string, words int) {
	s.Stats.Accept(pageURL, s.Tokenizer.Tokenize(text), words)
	s.checkpoint(ctx)
}

func (s *Scraper) checkpoint(ctx context.Context) {
	if s.Checkpoints == nil {
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.Checkpoints.Save(ctx, s.Stats.Snapshot()); err != nil {
		s.logger().Error("checkpoint save failed", "err", err)
	}
}

// discoverLinks resolves hrefs against pageURL and keeps the unique links
// the validator accepts. Malformed links are logged and dropped.
func (s *Scraper) discoverLinks(logger *slog.Logger, pageURL string, hrefs []string) []string {
	seen := make(map[string]struct{}, len(hrefs))
	var links []string

	for _, href := range hrefs {
		if isNonHTTPLink(href) {
			continue
		}

		link, err := resolveLink(pageURL, href)
		if err != nil {
			logger.Debug("dropping malformed link", "href", href, "err", err)
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}

		ok, err := s.Validator.Valid(link)
		if err != nil {
			logger.Debug("dropping malformed link", "href", href, "err", err)
			continue
		}
		if ok {
			links = append(links, link)
		}
	}
	return links
}

func (s *Scraper) logger() *slog.Logger {
	if s.Logger == nil {
		return discardLogger
	}
	return s.Logger
}

var discardLogger = slog.New(slog.DiscardHandler)

// resolveLink resolves href against base and strips the fragment.
func resolveLink(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", icscrawl.Errorf(icscrawl.EINVALID, "invalid base URL %q: %v", base, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", icscrawl.Errorf(icscrawl.EINVALID, "invalid link %q: %v", href, err)
	}
	resolved := b.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String(), nil
}

// isNonHTTPLink reports whether href is a pseudo-link such as javascript:
// or mailto: that never resolves to a page.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
