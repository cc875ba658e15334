package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webnovel"
)

// field is one lookup strategy: the first element matching Selector,
// read from Attr when set or from its text otherwise.
type field struct {
	Selector string
	Attr     string
}

var titleFields = []field{
	{Selector: "h1"},
	{Selector: ".title"},
	{Selector: "#title"},
	{Selector: ".book-title"},
	{Selector: "#book-title"},
	{Selector: ".novel-title"},
	{Selector: "#novel-title"},
	{Selector: "meta[property='og:title']", Attr: "content"},
}

var authorFields = []field{
	{Selector: ".author"},
	{Selector: "#author"},
	{Selector: ".book-author"},
	{Selector: "#book-author"},
	{Selector: ".writer"},
	{Selector: "#writer"},
	{Selector: "meta[property='og:novel:author']", Attr: "content"},
	{Selector: "meta[property='og:author']", Attr: "content"},
	{Selector: "[itemprop='author']"},
}

var descriptionFields = []field{
	{Selector: ".description"},
	{Selector: "#description"},
	{Selector: ".intro"},
	{Selector: "#intro"},
	{Selector: ".summary"},
	{Selector: "#summary"},
	{Selector: ".book-intro"},
	{Selector: "#book-intro"},
	{Selector: "meta[property='og:description']", Attr: "content"},
	{Selector: "meta[name='description']", Attr: "content"},
}

var (
	authorPrefix = regexp.MustCompile(`(?i)^(作者|作　者|author)\s*[：:]\s*`)
	authorInline = regexp.MustCompile(`作者\s*[：:]\s*(\S+)`)
)

// ExtractMetadata returns title, author and description of an index page.
// The rule is accepted for symmetry; metadata lookup uses common selectors.
func (e *Extractor) ExtractMetadata(html string, rule *webnovel.Rule) webnovel.NovelMetadata {
	doc := parse(html)
	if doc == nil {
		return webnovel.NovelMetadata{}
	}

	m := webnovel.NovelMetadata{
		Title:       firstField(doc, titleFields),
		Author:      extractAuthor(doc),
		Description: firstField(doc, descriptionFields),
	}
	if m.Title == "" {
		m.Title = pageTitle(doc)
	}

	if !m.Complete() {
		if a := e.articleFor(html); a != nil {
			if m.Title == "" {
				m.Title = a.Title
			}
			if m.Author == "" {
				m.Author = a.Author
			}
			if m.Description == "" {
				m.Description = a.Excerpt
			}
		}
	}
	return m
}

func firstField(doc *goquery.Document, fields []field) string {
	for _, f := range fields {
		sel := doc.Find(f.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		var v string
		if f.Attr != "" {
			v = sel.AttrOr(f.Attr, "")
		} else {
			v = sel.Text()
		}
		if v = squash(v); v != "" {
			return v
		}
	}
	return ""
}

func extractAuthor(doc *goquery.Document) string {
	if a := firstField(doc, authorFields); a != "" {
		if stripped := strings.TrimSpace(authorPrefix.ReplaceAllString(a, "")); stripped != "" {
			return stripped
		}
	}

	var author string
	doc.Find(`*:containsOwn("作者")`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if m := authorInline.FindStringSubmatch(squash(sel.Text())); m != nil {
			author = m[1]
			return false
		}
		return true
	})
	return author
}

// pageTitle returns the document <title> with the trailing site name
// after the last separator removed.
func pageTitle(doc *goquery.Document) string {
	title := squash(doc.Find("title").First().Text())
	if title == "" {
		return ""
	}
	if i := strings.LastIndexAny(title, "-_|"); i >= 0 {
		if trimmed := strings.TrimSpace(title[:i]); trimmed != "" {
			return trimmed
		}
	}
	return title
}
