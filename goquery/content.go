package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webnovel"
)

// boilerplateSelectors are removed from every chapter page before any
// content strategy runs.
var boilerplateSelectors = []string{
	"script", "style", "iframe", "noscript",
	".ad", ".ads", ".advertisement", ".advert",
	"#ad", "#ads", "#advertisement",
	"[class^='ad-']", "[class*=' ad-']", "[class^='ads-']", "[class*=' ads-']",
	"[id^='ad-']", "[id^='ads-']",
	".banner", "#banner",
	".popup", "#popup",
	".sponsor", "#sponsor",
	".comment", "#comment", ".comments", "#comments",
}

// contentSelectors are the common chapter body containers, most specific first.
var contentSelectors = []string{
	"#content", "#chaptercontent", "#chapter-content", "#bookcontent",
	"#book_text", "#booktext", "#htmlContent", "#text-content",
	"#nr", "#nr1", "#BookText", "#TextContent",
	"#contentbox", "#chapter_content", "#novelcontent",
	".content", ".chaptercontent", ".chapter-content", ".bookcontent",
	".book_text", ".booktext", ".novelcontent", ".novel-content",
	".readcontent", ".read-content", ".article-content", ".txt",
	".chapter_content", ".text_content", ".TextContent",
	".contentbox", ".book-content", ".main-content", ".post-content",
	"article", ".article", "#article",
	"[itemprop='articleBody']",
	".panel-body", ".card-body", ".entry-content", ".post-body",
}

// chromeKeywords mark page furniture that never holds a chapter body.
var chromeKeywords = []string{"nav", "header", "footer", "sidebar", "menu", "comment"}

const (
	// minCommonSelectorText is the length a common selector's text must
	// exceed to be accepted.
	minCommonSelectorText = 100

	// minTextBlock is the length a structural block must exceed to be
	// considered a chapter body.
	minTextBlock = 200
)

// ExtractChapterContent returns the plain text body of a chapter page.
func (e *Extractor) ExtractChapterContent(html string, rule *webnovel.Rule) string {
	doc := parse(html)
	if doc == nil {
		return ""
	}

	if rule != nil {
		for _, s := range rule.RemoveSelectors {
			if s = strings.TrimSpace(s); s != "" {
				doc.Find(s).Remove()
			}
		}
	}
	for _, s := range boilerplateSelectors {
		doc.Find(s).Remove()
	}

	if rule != nil && strings.TrimSpace(rule.ContentSelector) != "" {
		if text := selectionText(doc.Find(rule.ContentSelector).First()); text != "" {
			return text
		}
	}

	for _, s := range contentSelectors {
		text := selectionText(doc.Find(s).First())
		if utf8.RuneCountInString(text) > minCommonSelectorText {
			return text
		}
	}

	if text := largestTextBlock(doc); text != "" {
		return text
	}

	if a := e.articleFor(html); a != nil && a.ContentHTML != "" {
		if adoc := parse(a.ContentHTML); adoc != nil {
			return selectionText(adoc.Selection)
		}
	}
	return ""
}

// largestTextBlock returns the text of the longest div, article, section
// or main element that is not page chrome.
func largestTextBlock(doc *goquery.Document) string {
	var (
		best    *goquery.Selection
		bestLen int
	)
	doc.Find("div, article, section, main").Each(func(_ int, sel *goquery.Selection) {
		if isChrome(sel) {
			return
		}
		n := utf8.RuneCountInString(strings.TrimSpace(sel.Text()))
		if n > minTextBlock && n > bestLen {
			best, bestLen = sel, n
		}
	})
	if best == nil {
		return ""
	}
	return selectionText(best)
}

func isChrome(sel *goquery.Selection) bool {
	class := strings.ToLower(sel.AttrOr("class", ""))
	id := strings.ToLower(sel.AttrOr("id", ""))
	for _, kw := range chromeKeywords {
		if strings.Contains(class, kw) || strings.Contains(id, kw) {
			return true
		}
	}
	return false
}
