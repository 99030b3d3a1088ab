package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/icscrawl"
	"github.com/fwojciec/icscrawl/crawl"
	"github.com/fwojciec/icscrawl/goquery"
	"github.com/fwojciec/icscrawl/mock"
	"github.com/fwojciec/icscrawl/tokenize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// words returns n pseudo-random words that cannot collide with stopwords.
func words(seed uint64, n int) []string {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	const letters = "abcdefghijklmnopqrstuvwxyz"
	out := make([]string, n)
	for i := range out {
		b := []byte("zq")
		for j := 0; j < 5; j++ {
			b = append(b, letters[r.IntN(len(letters))])
		}
		out[i] = string(b)
	}
	return out
}

// page renders body words as a paragraph followed by one anchor per link.
// Each anchor's text is taken from the end of body.
func page(body []string, hrefs ...string) []byte {
	var sb strings.Builder
	text := body[:len(body)-len(hrefs)]
	anchors := body[len(body)-len(hrefs):]
	sb.WriteString("<html><head><script>var ignored = 1;</script></head><body><p>")
	sb.WriteString(strings.Join(text, " "))
	sb.WriteString("</p>")
	for i, href := range hrefs {
		fmt.Fprintf(&sb, `<a href="%s">%s</a>`, href, anchors[i])
	}
	sb.WriteString("</body></html>")
	return []byte(sb.String())
}

func ok(body []byte) *icscrawl.Response {
	return &icscrawl.Response{Status: http.StatusOK, Body: body, Header: http.Header{}}
}

func newScraper() *crawl.Scraper {
	return crawl.NewScraper(goquery.NewParser(), tokenize.NewTokenizer(tokenize.DefaultStopwords()))
}

func TestScraper_Scrape(t *testing.T) {
	t.Parallel()

	t.Run("accepts page and returns validated links", func(t *testing.T) {
		t.Parallel()

		s := newScraper()
		s.Stats.UpdateLongest("http://www.ics.uci.edu/short", 55)
		body := words(1, 60)
		html := page(body,
			"/people#top",
			"http://www.cs.uci.edu/about",
		)

		res := s.Scrape(context.Background(), "http://www.ics.uci.edu/index.html", ok(html))

		assert.Equal(t, crawl.OutcomeAccepted, res.Outcome)
		assert.Equal(t, []string{
			"http://www.ics.uci.edu/people",
			"http://www.cs.uci.edu/about",
		}, res.Links)

		want := make(map[string]int)
		for _, w := range body {
			want[w]++
		}
		for w, n := range want {
			assert.Equal(t, n, s.Stats.WordCount(w), "word %q", w)
		}
		assert.Equal(t, 0, s.Stats.WordCount("ignored"))
		assert.Equal(t, icscrawl.LongestPage{URL: "http://www.ics.uci.edu/index.html", Words: 60}, s.Stats.Longest())
		assert.Equal(t, map[string]int{"www.ics.uci.edu": 1}, s.Stats.Subdomains())
	})

	t.Run("filters stopwords from word counts", func(t *testing.T) {
		t.Parallel()

		s := newScraper()
		body := append(words(2, 58), "the", "and")

		res := s.Scrape(context.Background(), "http://www.ics.uci.edu/", ok(page(body)))

		require.Equal(t, crawl.OutcomeAccepted, res.Outcome)
		assert.Equal(t, 0, s.Stats.WordCount("the"))
		assert.Equal(t, 0, s.Stats.WordCount("and"))
		assert.Equal(t, 1, s.Stats.WordCount(body[0]))
	})

	t.Run("drops links outside the crawl scope", func(t *testing.T) {
		t.Parallel()

		s := newScraper()
		body := words(3, 66)

		res := s.Scrape(context.Background(), "http://www.ics.uci.edu/", ok(page(body,
			"http://x.evil.com/a",
			"ftp://x.ics.uci.edu/a",
			"/files/archive.zip",
			"mailto:someone@ics.uci.edu",
			"javascript:void(0)",
			"/about",
			"/about#team",
		)))

		require.Equal(t, crawl.OutcomeAccepted, res.Outcome)
		assert.Equal(t, []string{"http://www.ics.uci.edu/about"}, res.Links)
	})

	t.Run("follows redirect without content extraction", func(t *testing.T) {
		t.Parallel()

		parser := &mock.Parser{
			ParseFn: func(body []byte) (*icscrawl.Document, error) {
				t.Error("parser must not be called for redirects")
				return nil, errors.New("unexpected call")
			},
		}
		s := crawl.NewScraper(parser, tokenize.NewTokenizer(nil))

		res := s.Scrape(context.Background(), "http://x.ics.uci.edu/a", &icscrawl.Response{
			Status: http.StatusFound,
			Header: http.Header{"Location": {"http://x.ics.uci.edu/b"}},
		})

		assert.Equal(t, crawl.OutcomeRedirect, res.Outcome)
		assert.Equal(t, []string{"http://x.ics.uci.edu/b"}, res.Links)
		assert.Equal(t, 0, s.Stats.Pages())
	})

	t.Run("resolves relative redirect", func(t *testing.T) {
		t.Parallel()

		s := newScraper()

		res := s.Scrape(context.Background(), "http://x.ics.uci.edu/a/index", &icscrawl.Response{
			Status: http.StatusMovedPermanently,
			Header: http.Header{"Location": {"../b#frag"}},
		})

		assert.Equal(t, crawl.OutcomeRedirect, res.Outcome)
		assert.Equal(t, []string{"http://x.ics.uci.edu/b"}, res.Links)
	})

	t.Run("rejects redirect without location", func(t *testing.T) {
		t.Parallel()

		s := newScraper()

		res := s.Scrape(context.Background(), "http://x.ics.uci.edu/a", &icscrawl.Response{Status: http.StatusFound})

		assert.Equal(t, crawl.OutcomeBadRedirect, res.Outcome)
		assert.Empty(t, res.Links)
	})

	t.Run("rejects redirect outside the crawl scope", func(t *testing.T) {
		t.Parallel()

		s := newScraper()

		res := s.Scrape(context.Background(), "http://x.ics.uci.edu/a", &icscrawl.Response{
			Status: http.StatusFound,
			Header: http.Header{"Location": {"https://login.example.com/"}},
		})

		assert.Equal(t, crawl.OutcomeBadRedirect, res.Outcome)
		assert.Empty(t, res.Links)
	})

	t.Run("rejects page under the word threshold", func(t *testing.T) {
		t.Parallel()

		s := newScraper()
		body := words(4, 49)

		res := s.Scrape(context.Background(), "http://www.ics.uci.edu/", ok(page(body, "/about")))

		assert.Equal(t, crawl.OutcomeLowContent, res.Outcome)
		assert.Empty(t, res.Links)
		assert.Equal(t, 0, s.Stats.WordCount(body[0]))
		assert.Equal(t, 0, s.Stats.Pages())
		assert.Equal(t, icscrawl.LongestPage{}, s.Stats.Longest())
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		t.Parallel()

		s := newScraper()

		res := s.Scrape(context.Background(), "http://www.ics.uci.edu/", &icscrawl.Response{
			Status: icscrawl.StatusTransportError,
			Error:  "connection refused",
		})

		assert.Equal(t, crawl.OutcomeUnknownStatus, res.Outcome)
		assert.Empty(t, res.Links)
	})

	t.Run("rejects non-OK status", func(t *testing.T) {
		t.Parallel()

		s := newScraper()

		res := s.Scrape(context.Background(), "http://www.ics.uci.edu/", &icscrawl.Response{
			Status: http.StatusNotFound,
			Body:   page(words(5, 80)),
		})

		assert.Equal(t, crawl.OutcomeNotOK, res.Outcome)
	})

	t.Run("rejects OK status without body", func(t *testing.T) {
		t.Parallel()

		s := newScraper()

		res := s.Scrape(context.Background(), "http://www.ics.uci.edu/", &icscrawl.Response{Status: http.StatusOK})

		assert.Equal(t, crawl.OutcomeNotOK, res.Outcome)
	})

	t.Run("rejects oversized page before parsing", func(t *testing.T) {
		t.Parallel()

		parsed := false
		parser := &mock.Parser{
			ParseFn: func(body []byte) (*icscrawl.Document, error) {
				parsed = true
				return &icscrawl.Document{}, nil
			},
		}
		s := crawl.NewScraper(parser, tokenize.NewTokenizer(nil))

		res := s.Scrape(context.Background(), "http://www.ics.uci.edu/", ok(make([]byte, crawl.MaxPageSize+1)))

		assert.Equal(t, crawl.OutcomeTooLarge, res.Outcome)
		assert.False(t, parsed)
	})

	t.Run("rejects crawler trap", func(t *testing.T) {
		t.Parallel()

		s := newScraper()

		res := s.Scrape(context.Background(), "http://x.ics.uci.edu/cal?year=2024&month=5", ok(page(words(6, 80), "/about")))

		assert.Equal(t, crawl.OutcomeTrap, res.Outcome)
		assert.Empty(t, res.Links)
		assert.Equal(t, 0, s.Stats.Pages())
	})

	t.Run("rejects unparsable page", func(t *testing.T) {
		t.Parallel()

		parser := &mock.Parser{
			ParseFn: func(body []byte) (*icscrawl.Document, error) {
				return nil, errors.New("malformed")
			},
		}
		s := crawl.NewScraper(parser, tokenize.NewTokenizer(nil))

		res := s.Scrape(context.Background(), "http://www.ics.uci.edu/", ok([]byte("<html>")))

		assert.Equal(t, crawl.OutcomeParseFailed, res.Outcome)
	})

	t.Run("rejects near-duplicate content at another URL", func(t *testing.T) {
		t.Parallel()

		s := newScraper()
		body := words(7, 3000)
		first := s.Scrape(context.Background(), "http://www.ics.uci.edu/a", ok(page(body, "/next")))

		edited := append([]string{}, body...)
		edited[1500] = "zqchanged"
		second := s.Scrape(context.Background(), "http://www.ics.uci.edu/b", ok(page(edited, "/next")))

		assert.Equal(t, crawl.OutcomeAccepted, first.Outcome)
		assert.Equal(t, crawl.OutcomeDuplicate, second.Outcome)
		assert.Empty(t, second.Links)
		assert.Equal(t, 1, s.Stats.Pages())
	})

	t.Run("saves checkpoint after accepting page", func(t *testing.T) {
		t.Parallel()

		var saved []*icscrawl.Checkpoint
		s := newScraper()
		s.Checkpoints = &mock.CheckpointStore{
			SaveFn: func(_ context.Context, cp *icscrawl.Checkpoint) error {
				saved = append(saved, cp)
				return nil
			},
		}

		s.Scrape(context.Background(), "http://www.ics.uci.edu/a", ok(page(words(8, 70))))
		s.Scrape(context.Background(), "http://www.ics.uci.edu/b", ok(page(words(9, 10))))

		require.Len(t, saved, 1)
		assert.Equal(t, []string{"http://www.ics.uci.edu/a"}, saved[0].VisitedURLs)
		assert.Equal(t, 70, saved[0].LongestPage.Words)
	})

	t.Run("keeps accepting when checkpoint save fails", func(t *testing.T) {
		t.Parallel()

		s := newScraper()
		s.Checkpoints = &mock.CheckpointStore{
			SaveFn: func(_ context.Context, _ *icscrawl.Checkpoint) error {
				return errors.New("disk full")
			},
		}

		res := s.Scrape(context.Background(), "http://www.ics.uci.edu/a", ok(page(words(10, 70), "/b")))

		assert.Equal(t, crawl.OutcomeAccepted, res.Outcome)
		assert.Equal(t, []string{"http://www.ics.uci.edu/b"}, res.Links)
	})

	t.Run("does not recount restored page", func(t *testing.T) {
		t.Parallel()

		s := newScraper()
		s.Stats.Restore(&icscrawl.Checkpoint{
			VisitedURLs: []string{"http://www.ics.uci.edu/a"},
			Subdomains:  map[string]int{"www.ics.uci.edu": 1},
			LongestPage: icscrawl.LongestPage{URL: "http://www.ics.uci.edu/a", Words: 70},
		})
		body := words(11, 70)

		res := s.Scrape(context.Background(), "http://www.ics.uci.edu/a", ok(page(body, "/b")))

		assert.Equal(t, crawl.OutcomeAccepted, res.Outcome)
		assert.Equal(t, []string{"http://www.ics.uci.edu/b"}, res.Links)
		assert.Equal(t, 0, s.Stats.WordCount(body[0]))
		assert.Equal(t, 1, s.Stats.Subdomains()["www.ics.uci.edu"])
	})

	t.Run("last checkpoint holds every page accepted concurrently", func(t *testing.T) {
		t.Parallel()

		var last *icscrawl.Checkpoint
		s := newScraper()
		s.Checkpoints = &mock.CheckpointStore{
			SaveFn: func(_ context.Context, cp *icscrawl.Checkpoint) error {
				last = cp
				return nil
			},
		}

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				u := fmt.Sprintf("http://www.ics.uci.edu/%d", i)
				s.Scrape(context.Background(), u, ok(page(words(uint64(100+i), 80))))
			}(i)
		}
		wg.Wait()

		require.NotNil(t, last)
		assert.Len(t, last.VisitedURLs, 20)
		assert.Equal(t, 20, s.Stats.Pages())
	})

	t.Run("checkpoint saved mid-accept never lists a page without its words", func(t *testing.T) {
		t.Parallel()

		bodyA, bodyB := words(30, 70), words(31, 70)
		markers := map[string]string{
			"http://www.ics.uci.edu/a": bodyA[0],
			"http://www.ics.uci.edu/b": bodyB[0],
		}

		started := make(chan struct{})
		release := make(chan struct{})
		tokenizer := tokenize.NewTokenizer(tokenize.DefaultStopwords())

		s := crawl.NewScraper(goquery.NewParser(), &mock.Tokenizer{
			TokenizeFn: func(text string) []string {
				if strings.Contains(text, bodyA[0]) {
					close(started)
					<-release
				}
				return tokenizer.Tokenize(text)
			},
		})

		var mu sync.Mutex
		var saved []*icscrawl.Checkpoint
		s.Checkpoints = &mock.CheckpointStore{
			SaveFn: func(_ context.Context, cp *icscrawl.Checkpoint) error {
				mu.Lock()
				defer mu.Unlock()
				saved = append(saved, cp)
				return nil
			},
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			s.Scrape(context.Background(), "http://www.ics.uci.edu/a", ok(page(bodyA)))
		}()
		<-started
		s.Scrape(context.Background(), "http://www.ics.uci.edu/b", ok(page(bodyB)))
		close(release)
		<-done

		require.Len(t, saved, 2)
		assert.Equal(t, []string{"http://www.ics.uci.edu/b"}, saved[0].VisitedURLs)
		for _, cp := range saved {
			for _, u := range cp.VisitedURLs {
				assert.Positive(t, cp.WordCounts[markers[u]], "words of %s missing", u)
			}
		}

		resumed := newScraper()
		resumed.Stats.Restore(saved[0])
		resumed.Scrape(context.Background(), "http://www.ics.uci.edu/a", ok(page(bodyA)))
		assert.Positive(t, resumed.Stats.WordCount(bodyA[0]))
	})
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "accepted", crawl.OutcomeAccepted.String())
	assert.Equal(t, "low_content", crawl.OutcomeLowContent.String())
	assert.Equal(t, "unknown", crawl.Outcome(99).String())
}
