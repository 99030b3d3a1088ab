// Package tokenize splits page text into lowercase word tokens.
package tokenize

import (
	"strings"
	"unicode"

	"github.com/fwojciec/icscrawl"
)

// Ensure Tokenizer implements icscrawl.Tokenizer at compile time.
var _ icscrawl.Tokenizer = (*Tokenizer)(nil)

// Tokenizer splits text on every rune that is not a letter or digit and
// lowercases the result. Tokens found in the stopword set are dropped.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a Tokenizer that removes the given stopwords.
// Pass nil to keep every token.
//
// Stopwords are tokenized like text. A contraction always removes its
// suffix fragment ("t" in "don't"), but its stem only when the stem is a
// stopword itself or the negated form of one ("don" from "do"). Stems such
// as "can" in "can't" or "let" in "let's" are kept.
func NewTokenizer(stopwords []string) *Tokenizer {
	t := &Tokenizer{stopwords: make(map[string]struct{})}

	var contractions [][]string
	for _, sw := range stopwords {
		toks := split(sw)
		switch len(toks) {
		case 0:
		case 1:
			t.stopwords[toks[0]] = struct{}{}
		default:
			contractions = append(contractions, toks)
		}
	}

	for _, toks := range contractions {
		stem, rest := toks[0], toks[1:]
		for _, tok := range rest {
			t.stopwords[tok] = struct{}{}
		}
		negated := rest[len(rest)-1] == "t" && t.isStopword(strings.TrimSuffix(stem, "n"))
		if t.isStopword(stem) || negated {
			t.stopwords[stem] = struct{}{}
		}
	}
	return t
}

func (t *Tokenizer) isStopword(tok string) bool {
	_, ok := t.stopwords[tok]
	return ok
}

// Tokenize returns the non-stopword tokens of text.
func (t *Tokenizer) Tokenize(text string) []string {
	tokens := split(text)
	if len(t.stopwords) == 0 {
		return tokens
	}

	out := tokens[:0]
	for _, tok := range tokens {
		if !t.isStopword(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func split(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// DefaultStopwords returns the English stopword list used by the crawler.
func DefaultStopwords() []string {
	return strings.Fields(defaultStopwords)
}

const defaultStopwords = `
a about above after again against all am an and any are aren't as at be
because been before being below between both but by can't cannot could
couldn't did didn't do does doesn't doing don't down during each few for
from further had hadn't has hasn't have haven't having he he'd he'll he's
her here here's hers herself him himself his how how's i i'd i'll i'm i've
if in into is isn't it it's its itself let's me more most mustn't my myself
no nor not of off on once only or other ought our ours ourselves out over
own same shan't she she'd she'll she's should shouldn't so some such than
that that's the their theirs them themselves then there there's these they
they'd they'll they're they've this those through to too under until up
very was wasn't we we'd we'll we're we've were weren't what what's when
when's where where's which while who who's whom why why's with won't would
wouldn't you you'd you'll you're you've your yours yourself yourselves`
