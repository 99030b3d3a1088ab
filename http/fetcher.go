// Package http provides an HTTP-based implementation of icscrawl.Downloader.
// Pages are fetched directly or through a caching proxy server.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/icscrawl"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent identifies the crawler to servers.
const DefaultUserAgent = "icscrawl/1.0"

// DefaultMaxBodySize bounds how much of a body is read. One extra byte is
// read past the bound so callers can tell the body was too large.
const DefaultMaxBodySize = 1 << 20

// Ensure Downloader implements icscrawl.Downloader at compile time.
var _ icscrawl.Downloader = (*Downloader)(nil)

// Downloader retrieves pages over HTTP. Redirects are not followed; the
// 3xx response is returned to the caller with its Location header.
type Downloader struct {
	client      *http.Client
	cacheServer string
	userAgent   string
	maxBodySize int64
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithCacheServer routes every request through the cache server at
// host:port, which is asked for the page with the q and u query parameters.
func WithCacheServer(addr string) Option {
	return func(dl *Downloader) {
		dl.cacheServer = addr
	}
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(dl *Downloader) {
		dl.userAgent = ua
	}
}

// WithMaxBodySize sets the body read bound.
func WithMaxBodySize(n int64) Option {
	return func(dl *Downloader) {
		dl.maxBodySize = n
	}
}

// NewDownloader creates a new HTTP-based Downloader.
func NewDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(d)
	}

	// No client timeout: a fetch ends only when the server responds or ctx
	// is done.
	d.client = &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return d
}

// Download fetches rawURL. Transport failures are reported with
// icscrawl.StatusTransportError and a description in Response.Error.
func (d *Downloader) Download(ctx context.Context, rawURL string) *icscrawl.Response {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.requestURL(rawURL), nil)
	if err != nil {
		return transportError(rawURL, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return transportError(rawURL, err)
	}
	defer resp.Body.Close()

	body, err := d.readBody(resp)
	if err != nil {
		return transportError(rawURL, err)
	}

	r := &icscrawl.Response{
		URL:    rawURL,
		Status: resp.StatusCode,
		Body:   body,
		Header: resp.Header,
	}
	if resp.StatusCode != http.StatusOK {
		r.Error = fmt.Sprintf("HTTP %d for %s", resp.StatusCode, rawURL)
	}
	return r
}

func (d *Downloader) requestURL(rawURL string) string {
	if d.cacheServer == "" {
		return rawURL
	}
	q := url.Values{}
	q.Set("q", rawURL)
	q.Set("u", d.userAgent)
	return "http://" + d.cacheServer + "/?" + q.Encode()
}

// readBody reads at most maxBodySize+1 bytes. HTML and text bodies within
// the bound are transcoded to UTF-8 according to their declared charset,
// unless transcoding would grow them past the bound.
func (d *Downloader) readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > d.maxBodySize {
		return raw, nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !isText(contentType) {
		return raw, nil
	}
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return raw, nil
	}
	decoded, err := io.ReadAll(r)
	if err != nil || int64(len(decoded)) > d.maxBodySize {
		return raw, nil
	}
	return decoded, nil
}

func isText(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") || mediaType == "application/xhtml+xml"
}

func transportError(rawURL string, err error) *icscrawl.Response {
	return &icscrawl.Response{
		URL:    rawURL,
		Status: icscrawl.StatusTransportError,
		Error:  err.Error(),
	}
}
