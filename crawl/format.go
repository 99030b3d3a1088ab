package crawl

import (
	"fmt"
	"strings"
)

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatOutcomes renders non-zero outcome counts as name=count pairs in
// pipeline order.
func FormatOutcomes(counts map[Outcome]int) string {
	var parts []string
	for o := OutcomeAccepted; o <= OutcomeLowContent; o++ {
		if n := counts[o]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", o, n))
		}
	}
	return strings.Join(parts, " ")
}

// Summary returns a one-line description of the crawl result.
func (r *Result) Summary() string {
	s := fmt.Sprintf("processed %d pages", r.Total())
	if outcomes := FormatOutcomes(r.Processed); outcomes != "" {
		s += " (" + outcomes + ")"
	}
	s += fmt.Sprintf(", %d new links, %s downloaded", r.LinksAdded, FormatBytes(r.Bytes))
	if r.FailedWorkers > 0 {
		s += fmt.Sprintf(", %d failed workers", r.FailedWorkers)
	}
	return s
}
