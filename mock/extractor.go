package mock

import "github.com/fwojciec/webnovel"

var _ webnovel.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of webnovel.Extractor.
type Extractor struct {
	ExtractMetadataFn       func(html string, rule *webnovel.Rule) webnovel.NovelMetadata
	ExtractChapterListFn    func(html, pageURL string, rule *webnovel.Rule) []webnovel.ChapterReference
	ExtractChapterContentFn func(html string, rule *webnovel.Rule) string
}

func (e *Extractor) ExtractMetadata(html string, rule *webnovel.Rule) webnovel.NovelMetadata {
	return e.ExtractMetadataFn(html, rule)
}

func (e *Extractor) ExtractChapterList(html, pageURL string, rule *webnovel.Rule) []webnovel.ChapterReference {
	return e.ExtractChapterListFn(html, pageURL, rule)
}

func (e *Extractor) ExtractChapterContent(html string, rule *webnovel.Rule) string {
	return e.ExtractChapterContentFn(html, rule)
}

var _ webnovel.ArticleExtractor = (*ArticleExtractor)(nil)

// ArticleExtractor is a mock implementation of webnovel.ArticleExtractor.
type ArticleExtractor struct {
	ExtractArticleFn func(html string) (*webnovel.Article, error)
}

func (e *ArticleExtractor) ExtractArticle(html string) (*webnovel.Article, error) {
	return e.ExtractArticleFn(html)
}
