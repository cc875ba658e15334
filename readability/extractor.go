// Package readability provides a go-readability implementation of
// webnovel.ArticleExtractor.
package readability

import (
	"strings"

	"github.com/fwojciec/webnovel"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements webnovel.ArticleExtractor at compile time.
var _ webnovel.ArticleExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractArticle processes raw HTML and returns the main content.
func (e *Extractor) ExtractArticle(rawHTML string) (*webnovel.Article, error) {
	if rawHTML == "" {
		return nil, webnovel.Errorf(webnovel.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, webnovel.Errorf(webnovel.EPARSE, "readability: %v", err)
	}

	return &webnovel.Article{
		Title:       strings.TrimSpace(article.Title),
		Author:      strings.TrimSpace(article.Byline),
		Excerpt:     strings.TrimSpace(article.Excerpt),
		ContentHTML: article.Content,
	}, nil
}
