package icscrawl

import "context"

// URLFrontier manages the crawl queue with deduplication.
// Every URL moves from queued to in-flight to completed exactly once.
type URLFrontier interface {
	// Add normalizes the URL and queues it.
	// Returns false if the URL has already been seen.
	// Returns EINVALID if the URL cannot be parsed or is not absolute.
	Add(url string) (bool, error)

	// Next removes the head of the queue and marks it in-flight.
	// Returns false if the queue is empty.
	Next() (string, bool)

	// Complete marks an in-flight URL as completed.
	// Returns EINVALID if the URL is not in flight.
	Complete(url string) error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
