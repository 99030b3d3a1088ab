package crawl

import (
	"net/url"
	"regexp"
	"strings"
)

// trapPatterns match URLs that expand without bound (calendars, pagination,
// sort orders, sessions, revision histories) or carry tracking parameters.
var trapPatterns = compilePatterns(
	`\?sort=`, `\?order=`, `\?page=\d+`,
	`\?date=`, `\?filter=`, `calendar`, `\?view=`, `\?session=`,
	`\?print=`, `\?lang=`, `\?mode=`, `\?year=\d{4}`, `\?month=\d{1,2}`, `\?day=\d{1,2}`,
	`\?tribe-bar-date=`, `outlook-ical=`,
	`\.ical$`, `\.ics$`,
	`doku\.php`,
	`\?do=media`, `\?tab_details=`, `\?tab_files=`,
	`\?rev=\d+`,
	`&do=diff`,
	`&do=edit`,
	`&printable=yes`,
	`\?share=`,
	`\?replytocom=`,
	`\?fbclid=`, `utm_`,
	`\?redirect=`,
	`\?attachment_id=`,
)

func compilePatterns(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// TrapDetector flags URLs that are likely crawler traps.
// The zero value is ready to use.
type TrapDetector struct{}

// NewTrapDetector creates a new TrapDetector.
func NewTrapDetector() *TrapDetector {
	return &TrapDetector{}
}

// IsTrap reports whether rawURL matches a known trap pattern.
func (d *TrapDetector) IsTrap(rawURL string) bool {
	// Wiki endpoints leak in through path variants the patterns miss.
	if u, err := url.Parse(rawURL); err == nil && strings.Contains(u.Path, "doku.php") {
		return true
	}
	for _, re := range trapPatterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}
