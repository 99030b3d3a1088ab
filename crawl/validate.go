package crawl

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/fwojciec/icscrawl"
)

// AllowedDomains are the host suffixes the crawler may visit.
var AllowedDomains = []string{
	".ics.uci.edu",
	".cs.uci.edu",
	".informatics.uci.edu",
	".stat.uci.edu",
}

// excludedExtension matches paths of non-HTML resources.
var excludedExtension = regexp.MustCompile(`.*\.(css|js|bmp|gif|jpg|jpeg|png|pdf|ico` +
	`|tiff?|mid|mp2|mp3|mp4|wav|avi|mov|mpeg|m4v|mkv|ogg|ogv` +
	`|ps|eps|tex|ppt|pptx|doc|docx|xls|xlsx` +
	`|data|dat|exe|bz2|tar|msi|bin|7z|dmg|iso` +
	`|epub|dll|cnf|tgz|sha1|thmx|mso|arff|rtf|jar|csv` +
	`|rm|smil|wmv|swf|wma|zip|rar|gz|ical|ppsx|pps|mol)$`)

// Validator decides whether a link may be crawled.
type Validator struct {
	// Domains lists the accepted host suffixes. Defaults to AllowedDomains.
	Domains []string
}

// NewValidator returns a Validator restricted to AllowedDomains.
func NewValidator() *Validator {
	return &Validator{Domains: AllowedDomains}
}

// Valid reports whether rawURL uses http or https, belongs to an allowed
// domain, and does not point at an excluded file type.
// Returns EINVALID if rawURL cannot be parsed.
func (v *Validator) Valid(rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, icscrawl.Errorf(icscrawl.EINVALID, "invalid URL %q: %v", rawURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false, nil
	}

	host := strings.ToLower(u.Host)
	allowed := false
	for _, domain := range v.Domains {
		if strings.HasSuffix(host, domain) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}

	return !excludedExtension.MatchString(strings.ToLower(u.Path)), nil
}
