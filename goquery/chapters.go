package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webnovel"
)

// ExtractChapterList returns the chapter references selected by the rule's
// chapter-list selector, in document order. Candidates lacking a title or
// a link are dropped and the remaining ones are numbered from zero.
func (e *Extractor) ExtractChapterList(html, pageURL string, rule *webnovel.Rule) []webnovel.ChapterReference {
	if rule == nil || strings.TrimSpace(rule.ChapterListSelector) == "" {
		return nil
	}
	doc := parse(html)
	if doc == nil {
		return nil
	}

	var refs []webnovel.ChapterReference
	doc.Find(rule.ChapterListSelector).Each(func(_ int, sel *goquery.Selection) {
		ref := webnovel.ChapterReference{
			Title: chapterTitle(sel, rule.ChapterTitleSelector),
			URL:   webnovel.ResolveURL(pageURL, chapterLink(sel, rule.ChapterLinkSelector)),
			Index: len(refs),
		}
		if ref.Valid() {
			refs = append(refs, ref)
		}
	})
	return refs
}

func chapterTitle(sel *goquery.Selection, selector string) string {
	if strings.TrimSpace(selector) != "" {
		if t := firstSelf(sel, selector); t.Length() > 0 {
			if title := squash(t.Text()); title != "" {
				return title
			}
		}
	}
	return squash(sel.Text())
}

// chapterLink tries the link selector, then the candidate's own href,
// then its first nested anchor.
func chapterLink(sel *goquery.Selection, selector string) string {
	if strings.TrimSpace(selector) != "" {
		if l := firstSelf(sel, selector); l.Length() > 0 {
			if href := usableHref(l); href != "" {
				return href
			}
		}
	}
	if href := usableHref(sel); href != "" {
		return href
	}
	return usableHref(sel.Find("a[href]").First())
}

func usableHref(sel *goquery.Selection) string {
	href := strings.TrimSpace(sel.AttrOr("href", ""))
	lower := strings.ToLower(href)
	if href == "" || href == "#" || strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") {
		return ""
	}
	return href
}
