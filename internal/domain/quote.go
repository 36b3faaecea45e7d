// Package domain contains core business entities and rules.
package domain

// Quote is a single quotation with its attributed author, as returned
// by the external quotes source. Quotes are never mutated after fetch.
type Quote struct {
	// Content is the text of the quote.
	Content string

	// Author is who said or wrote the quote.
	Author string
}

// QuoteCollection is the ordered set of quotes fetched for one widget.
// Order carries no meaning; it is only indexed for random selection.
type QuoteCollection []Quote

// Len returns the number of quotes in the collection.
func (c QuoteCollection) Len() int {
	return len(c)
}

// IsEmpty reports whether the collection holds no quotes.
func (c QuoteCollection) IsEmpty() bool {
	return len(c) == 0
}

// DisplayedQuote is the view of the currently selected quote,
// including the resolved author portrait.
type DisplayedQuote struct {
	Content  string
	Author   string
	ImageURL string
}
