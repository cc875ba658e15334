package download

import (
	"context"
	"strings"

	"github.com/fwojciec/webnovel"
)

// sampleLength is the number of characters of the first chapter shown by
// TestRule.
const sampleLength = 200

// RuleTestResult summarizes a dry run of a rule against one index page.
type RuleTestResult struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	ChapterCount int    `json:"chapterCount"`

	// Sample is the start of the first chapter's cleaned text, or a
	// failure placeholder when it could not be downloaded.
	Sample string `json:"sample"`

	// Error is set when the rule is incomplete or the index page could
	// not be fetched; the other fields are then empty.
	Error string `json:"error,omitempty"`
}

// OK reports whether the index page was read.
func (r *RuleTestResult) OK() bool {
	return r.Error == ""
}

// TestRule fetches the index page at rawURL with rule, extracts its
// metadata and chapter list, and downloads the first chapter as a sample.
// Nothing is stored.
func (d *Downloader) TestRule(ctx context.Context, rawURL string, rule *webnovel.Rule) *RuleTestResult {
	u, err := webnovel.ParseSourceURL(rawURL)
	if err != nil {
		return &RuleTestResult{Error: webnovel.ErrorMessage(err)}
	}
	if err := rule.Validate(); err != nil {
		return &RuleTestResult{Error: webnovel.ErrorMessage(err)}
	}
	html, err := d.fetchIndexPage(ctx, u.String())
	if err != nil {
		return &RuleTestResult{Error: webnovel.ErrorMessage(err)}
	}

	meta := d.Extractor.ExtractMetadata(html, rule)
	chapters := d.Extractor.ExtractChapterList(html, u.String(), rule)
	result := &RuleTestResult{
		Title:        meta.Title,
		Author:       meta.Author,
		ChapterCount: len(chapters),
	}
	if len(chapters) == 0 {
		return result
	}

	page, err := d.Fetcher.Fetch(ctx, chapters[0].URL)
	if err != nil {
		result.Sample = webnovel.FailurePlaceholder(err)
		return result
	}
	result.Sample = truncate(d.normalize(d.Extractor.ExtractChapterContent(page, rule)), sampleLength)
	return result
}

// truncate cuts s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
