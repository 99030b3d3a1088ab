package crawl

import (
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/icscrawl"
	"github.com/fwojciec/icscrawl/bloom"
)

// Compile-time interface verification.
var _ icscrawl.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO URL frontier with exact deduplication.
// It is safe for concurrent use by multiple goroutines; every method runs
// under a single mutex covering the queue, the in-flight set and the
// visited set.
type Frontier struct {
	mu        sync.Mutex
	filter    *bloom.Filter
	visited   map[string]struct{}
	queue     []string
	inflight  map[string]struct{}
	completed int
}

// NewFrontier creates an empty Frontier sized for n expected URLs.
func NewFrontier(n uint) *Frontier {
	return &Frontier{
		filter:   bloom.NewFilter(n, frontierFalsePositiveRate),
		visited:  make(map[string]struct{}),
		inflight: make(map[string]struct{}),
	}
}

// NormalizeURL returns the canonical form of an absolute URL: scheme and
// host lowercased, fragment removed. Returns EINVALID for unparsable or
// relative URLs.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", icscrawl.Errorf(icscrawl.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", icscrawl.Errorf(icscrawl.EINVALID, "URL %q is not absolute", rawURL)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// Add queues the normalized URL unless it was seen before.
// Returns false if the URL has already been seen.
func (f *Frontier) Add(rawURL string) (bool, error) {
	u, err := NormalizeURL(rawURL)
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// The filter has no false negatives, so a miss skips the exact lookup.
	if f.filter.TestAndAdd(u) {
		if _, ok := f.visited[u]; ok {
			return false, nil
		}
	}
	f.visited[u] = struct{}{}
	f.queue = append(f.queue, u)
	return true, nil
}

// Next removes the oldest queued URL and marks it in-flight.
// The bool result is false if the queue is empty.
func (f *Frontier) Next() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	f.inflight[u] = struct{}{}
	return u, true
}

// Complete marks an in-flight URL as completed.
func (f *Frontier) Complete(u string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.inflight[u]; !ok {
		return icscrawl.Errorf(icscrawl.EINVALID, "URL %q is not in flight", u)
	}
	delete(f.inflight, u)
	f.completed++
	return nil
}

// Seen returns true if the URL has been queued, is in flight, or was
// completed. Unparsable URLs are never seen.
func (f *Frontier) Seen(rawURL string) bool {
	u, err := NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.visited[u]
	return ok
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// InFlight returns the number of URLs handed out by Next and not yet
// completed.
func (f *Frontier) InFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inflight)
}

// Completed returns the number of completed URLs.
func (f *Frontier) Completed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Visited returns the number of distinct URLs ever queued.
func (f *Frontier) Visited() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}
