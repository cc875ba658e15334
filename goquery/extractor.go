// Package goquery implements webnovel.Extractor with CSS selectors.
//
// Every extraction is an ordered list of strategies. A site rule is tried
// first; when it yields nothing, common selectors used by novel sites are
// tried, then structural heuristics, and finally an optional generic
// article extractor.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webnovel"
)

// Ensure Extractor implements webnovel.Extractor at compile time.
var _ webnovel.Extractor = (*Extractor)(nil)

// Extractor reads novel pages with goquery.
type Extractor struct {
	article webnovel.ArticleExtractor
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithArticleExtractor sets the generic extractor consulted when every
// selector-based strategy comes up empty.
func WithArticleExtractor(a webnovel.ArticleExtractor) Option {
	return func(e *Extractor) {
		e.article = a
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func parse(html string) *goquery.Document {
	if strings.TrimSpace(html) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}

// articleFor runs the configured article extractor, returning nil when
// none is set or it fails.
func (e *Extractor) articleFor(html string) *webnovel.Article {
	if e.article == nil {
		return nil
	}
	a, err := e.article.ExtractArticle(html)
	if err != nil {
		return nil
	}
	return a
}

// firstSelf returns sel itself when it matches selector, otherwise its
// first matching descendant.
func firstSelf(sel *goquery.Selection, selector string) *goquery.Selection {
	if sel.Is(selector) {
		return sel.First()
	}
	return sel.Find(selector).First()
}

// squash collapses all whitespace runs to single spaces.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
