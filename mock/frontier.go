package mock

import (
	"context"

	"github.com/fwojciec/icscrawl"
)

var _ icscrawl.URLFrontier = (*URLFrontier)(nil)

// URLFrontier is a mock implementation of icscrawl.URLFrontier.
type URLFrontier struct {
	AddFn      func(url string) (bool, error)
	NextFn     func() (string, bool)
	CompleteFn func(url string) error
}

func (f *URLFrontier) Add(url string) (bool, error) {
	return f.AddFn(url)
}

func (f *URLFrontier) Next() (string, bool) {
	return f.NextFn()
}

func (f *URLFrontier) Complete(url string) error {
	return f.CompleteFn(url)
}

var _ icscrawl.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of icscrawl.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
