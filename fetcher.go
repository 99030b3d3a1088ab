package icscrawl

import (
	"context"
	"net/http"
)

// StatusTransportError is the status reported by a Downloader when no HTTP
// response could be obtained (DNS failure, refused connection, unreadable
// body). Codes in the 600 range are outside the HTTP status space and are
// treated as transport garbage by the scraper.
const StatusTransportError = 600

// Response is the outcome of downloading a single URL.
// Status is always set. Body is nil when no body was received.
type Response struct {
	// URL is the URL that was requested.
	URL string

	// Status is the HTTP status code, or a 6xx code for transport failures.
	Status int

	// Body holds the response body, decoded to UTF-8 for HTML responses.
	Body []byte

	// Header holds the response headers.
	Header http.Header

	// Error describes the failure when Status is not 200.
	Error string
}

// Location returns the redirect target advertised by the response, if any.
func (r *Response) Location() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Location")
}

// Downloader retrieves pages for the crawler.
type Downloader interface {
	// Download fetches the URL. It never returns a nil Response: failures
	// are reported through Response.Status and Response.Error.
	// The context controls cancellation.
	Download(ctx context.Context, url string) *Response
}
