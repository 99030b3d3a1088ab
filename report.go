package icscrawl

import (
	"net/url"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReportDomain is the domain whose subdomains are listed in a Report.
const ReportDomain = "ics.uci.edu"

// DefaultTopWords is the number of most common words listed in a Report.
const DefaultTopWords = 50

// Report summarizes a crawl checkpoint.
type Report struct {
	UniquePages int
	LongestPage LongestPage
	Subdomains  []SubdomainCount
	TopWords    []WordCount
}

// SubdomainCount is the number of unique pages under one host.
type SubdomainCount struct {
	Host  string
	Pages int
}

// WordCount is the number of occurrences of one word.
type WordCount struct {
	Word  string
	Count int
}

// BuildReport summarizes cp. Subdomains are limited to hosts under
// ReportDomain and sorted by host. TopWords holds at most topN words longer
// than one character that are not purely numeric, most frequent first with
// ties broken alphabetically.
func BuildReport(cp *Checkpoint, topN int) *Report {
	r := &Report{LongestPage: cp.LongestPage}

	unique := make(map[string]struct{}, len(cp.VisitedURLs))
	pagesByHost := make(map[string]map[string]struct{})
	for _, raw := range cp.VisitedURLs {
		unique[raw] = struct{}{}

		u, err := url.Parse(raw)
		if err != nil || !underReportDomain(u.Hostname()) {
			continue
		}
		if pagesByHost[u.Host] == nil {
			pagesByHost[u.Host] = make(map[string]struct{})
		}
		pagesByHost[u.Host][raw] = struct{}{}
	}
	r.UniquePages = len(unique)

	for host, pages := range pagesByHost {
		r.Subdomains = append(r.Subdomains, SubdomainCount{Host: host, Pages: len(pages)})
	}
	sort.Slice(r.Subdomains, func(i, j int) bool {
		return r.Subdomains[i].Host < r.Subdomains[j].Host
	})

	for word, count := range cp.WordCounts {
		if utf8.RuneCountInString(word) <= 1 || isNumeric(word) {
			continue
		}
		r.TopWords = append(r.TopWords, WordCount{Word: word, Count: count})
	}
	sort.Slice(r.TopWords, func(i, j int) bool {
		if r.TopWords[i].Count != r.TopWords[j].Count {
			return r.TopWords[i].Count > r.TopWords[j].Count
		}
		return r.TopWords[i].Word < r.TopWords[j].Word
	})
	if topN >= 0 && len(r.TopWords) > topN {
		r.TopWords = r.TopWords[:topN]
	}

	return r
}

// underReportDomain reports whether host is ReportDomain or one of its
// subdomains.
func underReportDomain(host string) bool {
	host = strings.ToLower(host)
	return host == ReportDomain || strings.HasSuffix(host, "."+ReportDomain)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
