// Package page models a fetched, parsed document: the unit of work the
// classifier and field extractors operate on. A Page is transient — it
// lives for one pipeline invocation and is never persisted.
package page

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Page is one fetched document: the resolved URL plus a queryable DOM.
// The normalized text view is computed lazily and memoised, so repeated
// extractor passes over the same page share one normalization.
type Page struct {
	rawURL string
	url    *url.URL
	doc    *goquery.Document

	textOnce sync.Once
	text     string
}

// New parses rawHTML into a Page. rawURL is kept as given even when it
// does not parse; extractors that need the host treat a nil URL as "no
// candidate" rather than failing.
func New(rawURL, rawHTML string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("page: parse document: %w", err)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		u = nil
	}
	return &Page{rawURL: rawURL, url: u, doc: doc}, nil
}

// URL returns the page's resolved URL string.
func (p *Page) URL() string {
	return p.rawURL
}

// Base returns the parsed URL for resolving relative links, or nil
// when the URL did not parse.
func (p *Page) Base() *url.URL {
	return p.url
}

// Host returns the URL's hostname, or "" when the URL did not parse.
func (p *Page) Host() string {
	if p.url == nil {
		return ""
	}
	return p.url.Hostname()
}

// Doc exposes the parsed document for element-scoped extractors.
func (p *Page) Doc() *goquery.Document {
	return p.doc
}

// Text returns the lower-cased visible text of the document with
// whitespace collapsed to single spaces. Script and style content is
// excluded. All regex-based extractors read from this view.
func (p *Page) Text() string {
	p.textOnce.Do(func() {
		body := p.doc.Clone()
		body.Find("script, style, noscript").Remove()
		p.text = Normalize(body.Text())
	})
	return p.text
}

// Normalize lower-cases text and collapses all whitespace runs to a
// single space.
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
