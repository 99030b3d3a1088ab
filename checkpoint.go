package icscrawl

import (
	"context"
	"encoding/json"
)

// Checkpoint is a persisted snapshot of crawl analytics.
type Checkpoint struct {
	// VisitedURLs lists every page accepted by the scraper.
	VisitedURLs []string `json:"visited_urls"`

	// WordCounts maps token to cumulative occurrence count.
	WordCounts map[string]int `json:"word_counts"`

	// Subdomains maps network location to the number of distinct pages.
	Subdomains map[string]int `json:"subdomains"`

	// LongestPage is the page with the greatest word count seen so far.
	LongestPage LongestPage `json:"longest_page"`
}

// LongestPage identifies the page with the most words.
// It is encoded as a two-element JSON array: [url, words].
// An empty URL is encoded as null.
type LongestPage struct {
	URL   string
	Words int
}

// MarshalJSON implements json.Marshaler.
func (p LongestPage) MarshalJSON() ([]byte, error) {
	var url any
	if p.URL != "" {
		url = p.URL
	}
	return json.Marshal([2]any{url, p.Words})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *LongestPage) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return Errorf(EINVALID, "longest page must have 2 elements, got %d", len(raw))
	}

	var url *string
	if err := json.Unmarshal(raw[0], &url); err != nil {
		return err
	}
	var words int
	if err := json.Unmarshal(raw[1], &words); err != nil {
		return err
	}

	p.URL = ""
	if url != nil {
		p.URL = *url
	}
	p.Words = words
	return nil
}

// CheckpointStore persists crawl checkpoints.
type CheckpointStore interface {
	// Load reads the last saved checkpoint.
	// Returns ENOTFOUND if no checkpoint exists and EINVALID if the
	// stored checkpoint cannot be decoded.
	Load(ctx context.Context) (*Checkpoint, error)

	// Save replaces the stored checkpoint.
	Save(ctx context.Context, cp *Checkpoint) error
}
