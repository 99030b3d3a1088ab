package mock

import "github.com/fwojciec/icscrawl"

var _ icscrawl.Parser = (*Parser)(nil)

// Parser is a mock implementation of icscrawl.Parser.
type Parser struct {
	ParseFn func(body []byte) (*icscrawl.Document, error)
}

func (p *Parser) Parse(body []byte) (*icscrawl.Document, error) {
	return p.ParseFn(body)
}

var _ icscrawl.Tokenizer = (*Tokenizer)(nil)

// Tokenizer is a mock implementation of icscrawl.Tokenizer.
type Tokenizer struct {
	TokenizeFn func(text string) []string
}

func (t *Tokenizer) Tokenize(text string) []string {
	return t.TokenizeFn(text)
}
