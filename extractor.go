package webnovel

// Extractor reads novel metadata, chapter lists and chapter bodies from
// markup using a rule. Every method is a pure function of its inputs:
// missing data yields empty values, never an error.
type Extractor interface {
	// ExtractMetadata returns title, author and description of an index page.
	ExtractMetadata(html string, rule *Rule) NovelMetadata

	// ExtractChapterList returns the valid chapter references of an index
	// page in document order. Links are resolved against pageURL.
	ExtractChapterList(html, pageURL string, rule *Rule) []ChapterReference

	// ExtractChapterContent returns the plain text body of a chapter page
	// with paragraph breaks kept as newlines.
	ExtractChapterContent(html string, rule *Rule) string
}

// Article is the result of a generic main-content extraction.
type Article struct {
	Title   string
	Author  string
	Excerpt string

	// ContentHTML is the main content as HTML with boilerplate removed.
	ContentHTML string
}

// ArticleExtractor finds the main content of an arbitrary page without
// site-specific selectors. It backs the last extraction strategy.
type ArticleExtractor interface {
	ExtractArticle(html string) (*Article, error)
}
