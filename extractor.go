package icscrawl

// Document holds the parts of an HTML page the crawler cares about.
type Document struct {
	// Text is the visible text of the page.
	Text string

	// Links are the href values of anchors, absolute or relative,
	// in document order.
	Links []string
}

// Parser turns a raw HTML body into a Document.
type Parser interface {
	Parse(body []byte) (*Document, error)
}

// Tokenizer splits text into lowercase alphanumeric tokens.
// Token order is not significant.
type Tokenizer interface {
	Tokenize(text string) []string
}
