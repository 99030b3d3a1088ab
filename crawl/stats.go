package crawl

import (
	"net/url"
	"sort"
	"sync"

	"github.com/fwojciec/icscrawl"
)

// Stats accumulates crawl analytics. It is safe for concurrent use.
// Each aggregate has its own lock so that workers updating different
// aggregates do not contend. Accept holds mu as a reader and Snapshot as
// a writer, so a snapshot never sees a page without its words.
type Stats struct {
	mu sync.RWMutex

	pagesMu    sync.Mutex
	pages      map[string]struct{}
	subdomains map[string]int

	wordsMu sync.Mutex
	words   map[string]int

	longestMu sync.Mutex
	longest   icscrawl.LongestPage
}

// NewStats returns empty Stats.
func NewStats() *Stats {
	return &Stats{
		pages:      make(map[string]struct{}),
		subdomains: make(map[string]int),
		words:      make(map[string]int),
	}
}

// RecordPage records an accepted page and counts it against its host.
// Returns false if the page was already recorded.
func (s *Stats) RecordPage(pageURL string) bool {
	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = u.Host
	}

	s.pagesMu.Lock()
	defer s.pagesMu.Unlock()

	if _, ok := s.pages[pageURL]; ok {
		return false
	}
	s.pages[pageURL] = struct{}{}
	s.subdomains[host]++
	return true
}

// Accept records an accepted page, its tokens and its word count as one
// step. Returns false, without counting tokens, if the page was already
// recorded.
func (s *Stats) Accept(pageURL string, tokens []string, words int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.RecordPage(pageURL) {
		return false
	}
	s.AddWords(tokens)
	s.UpdateLongest(pageURL, words)
	return true
}

// AddWords increments the count of every token.
func (s *Stats) AddWords(tokens []string) {
	s.wordsMu.Lock()
	defer s.wordsMu.Unlock()

	for _, t := range tokens {
		s.words[t]++
	}
}

// UpdateLongest replaces the longest page if words is strictly greater than
// the current maximum. Returns true if the page was replaced.
func (s *Stats) UpdateLongest(pageURL string, words int) bool {
	s.longestMu.Lock()
	defer s.longestMu.Unlock()

	if words <= s.longest.Words {
		return false
	}
	s.longest = icscrawl.LongestPage{URL: pageURL, Words: words}
	return true
}

// WordCount returns the cumulative count of token.
func (s *Stats) WordCount(token string) int {
	s.wordsMu.Lock()
	defer s.wordsMu.Unlock()
	return s.words[token]
}

// Pages returns the number of recorded pages.
func (s *Stats) Pages() int {
	s.pagesMu.Lock()
	defer s.pagesMu.Unlock()
	return len(s.pages)
}

// Subdomains returns a copy of the per-host page counts.
func (s *Stats) Subdomains() map[string]int {
	s.pagesMu.Lock()
	defer s.pagesMu.Unlock()

	out := make(map[string]int, len(s.subdomains))
	for k, v := range s.subdomains {
		out[k] = v
	}
	return out
}

// Longest returns the longest page recorded so far.
func (s *Stats) Longest() icscrawl.LongestPage {
	s.longestMu.Lock()
	defer s.longestMu.Unlock()
	return s.longest
}

// Snapshot returns a checkpoint of the current analytics.
// Visited URLs are sorted to keep checkpoints stable between saves.
func (s *Stats) Snapshot() *icscrawl.Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := &icscrawl.Checkpoint{
		Subdomains:  s.Subdomains(),
		LongestPage: s.Longest(),
	}

	s.pagesMu.Lock()
	cp.VisitedURLs = make([]string, 0, len(s.pages))
	for u := range s.pages {
		cp.VisitedURLs = append(cp.VisitedURLs, u)
	}
	s.pagesMu.Unlock()
	sort.Strings(cp.VisitedURLs)

	s.wordsMu.Lock()
	cp.WordCounts = make(map[string]int, len(s.words))
	for k, v := range s.words {
		cp.WordCounts[k] = v
	}
	s.wordsMu.Unlock()

	return cp
}

// Restore merges a checkpoint into the analytics.
// Restored pages count as recorded, so they are not counted again.
func (s *Stats) Restore(cp *icscrawl.Checkpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pagesMu.Lock()
	for _, u := range cp.VisitedURLs {
		s.pages[u] = struct{}{}
	}
	for host, n := range cp.Subdomains {
		s.subdomains[host] += n
	}
	s.pagesMu.Unlock()

	s.wordsMu.Lock()
	for k, v := range cp.WordCounts {
		s.words[k] += v
	}
	s.wordsMu.Unlock()

	s.UpdateLongest(cp.LongestPage.URL, cp.LongestPage.Words)
}
