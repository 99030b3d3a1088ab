// Package simhash provides near-duplicate detection for page text using
// 64-bit simhash fingerprints over character shingles.
package simhash

import (
	"math/bits"
	"strings"
	"sync"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// ShingleSize is the length in runes of each feature.
const ShingleSize = 3

// DuplicateThreshold is the Hamming distance below which two fingerprints
// are considered near-duplicates.
const DuplicateThreshold = 5

// Fingerprint computes the simhash of text. Text is lowercased and stripped
// of everything but letters, digits and underscores before being cut into
// overlapping shingles. Text shorter than a shingle yields a single feature.
func Fingerprint(text string) uint64 {
	var weights [64]int
	for _, feature := range shingles(normalize(text)) {
		h := xxhash.Sum64String(feature)
		for i := 0; i < 64; i++ {
			if h&(1<<i) != 0 {
				weights[i]++
			} else {
				weights[i]--
			}
		}
	}

	var fp uint64
	for i, w := range weights {
		if w > 0 {
			fp |= 1 << i
		}
	}
	return fp
}

// Distance returns the number of differing bits between a and b.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

func normalize(text string) []rune {
	out := make([]rune, 0, len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			out = append(out, r)
		}
	}
	return out
}

func shingles(runes []rune) []string {
	if len(runes) < ShingleSize {
		return []string{string(runes)}
	}
	out := make([]string, 0, len(runes)-ShingleSize+1)
	for i := 0; i+ShingleSize <= len(runes); i++ {
		out = append(out, string(runes[i:i+ShingleSize]))
	}
	return out
}

// Index holds accepted fingerprints. It is safe for concurrent use.
// Fingerprints are never removed.
type Index struct {
	mu        sync.Mutex
	prints    []uint64
	threshold int
}

// NewIndex returns an empty Index using DuplicateThreshold.
func NewIndex() *Index {
	return &Index{threshold: DuplicateThreshold}
}

// Check reports whether fp is a near-duplicate of a stored fingerprint.
// If it is not, fp is stored. The lookup and insert happen atomically.
func (idx *Index) Check(fp uint64) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, old := range idx.prints {
		if Distance(fp, old) < idx.threshold {
			return true
		}
	}
	idx.prints = append(idx.prints, fp)
	return false
}

// Len returns the number of stored fingerprints.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.prints)
}
