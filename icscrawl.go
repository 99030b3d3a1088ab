// Package icscrawl provides a concurrent crawler for a fixed set of academic
// subdomains. It walks the link graph from seed URLs, filters traps and
// near-duplicate pages, and collects word frequencies, unique-page counts,
// the longest page and per-subdomain counts along the way.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, http/, bloom/).
package icscrawl
