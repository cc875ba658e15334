package webnovel

import (
	"regexp"
	"strings"
)

// Normalizer strips boilerplate from extracted chapter text.
type Normalizer interface {
	Clean(text string) string
}

// NormalizerFunc adapts an ordinary function to the Normalizer interface.
type NormalizerFunc func(text string) string

// Clean calls f(text).
func (f NormalizerFunc) Clean(text string) string {
	return f(text)
}

var _ Normalizer = (*Cleaner)(nil)

// Lines matching any of these are removed entirely. Every pattern is
// anchored to a whole line so ordinary prose is never altered.
var boilerplateLines = []*regexp.Regexp{
	regexp.MustCompile(`^第[一二三四五六七八九十百千万零〇两\d]+[章节回]([\s:：]+[^。！？，!?]{0,40})?$`),
	regexp.MustCompile(`(?i)^chapter\s+\d+(\s*[:：.\-–]\s*.{0,80})?$`),
	regexp.MustCompile(`(?i)^.*ctrl\s*\+\s*d.*(收藏|bookmark).*$`),
	regexp.MustCompile(`^(上一章|下一章|上一页|下一页|目录|返回目录|章节目录)$`),
	regexp.MustCompile(`(?i)^(previous chapter|next chapter|table of contents|index)$`),
	regexp.MustCompile(`(?i)^https?://\S+$`),
	regexp.MustCompile(`(?i)^www\.\S+$`),
}

var (
	excessBlankLines = regexp.MustCompile(`\n{3,}`)
	closingQuote     = regexp.MustCompile(`([”’」])`)
)

// DefaultBrands are site names removed when they stand alone on a line.
var DefaultBrands = []string{"笔趣阁", "新笔趣阁", "天蚕土豆"}

// Cleaner is the default Normalizer. It drops boilerplate lines, trims
// line edges and collapses runs of blank lines.
type Cleaner struct {
	brands map[string]struct{}
}

// NewCleaner returns a Cleaner that also removes lines consisting solely
// of one of the given brand names.
func NewCleaner(extraBrands ...string) *Cleaner {
	c := &Cleaner{brands: make(map[string]struct{})}
	for _, b := range DefaultBrands {
		c.brands[b] = struct{}{}
	}
	for _, b := range extraBrands {
		if b = strings.TrimSpace(b); b != "" {
			c.brands[b] = struct{}{}
		}
	}
	return c
}

// Clean returns text with boilerplate lines removed. Empty input yields
// empty output.
func (c *Cleaner) Clean(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && c.isBoilerplate(line) {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.TrimSpace(strings.Join(kept, "\n"))
	out = excessBlankLines.ReplaceAllString(out, "\n\n")
	if out != "" && !strings.Contains(out, "\n") {
		out = strings.TrimSpace(closingQuote.ReplaceAllString(out, "$1\n"))
	}
	return out
}

func (c *Cleaner) isBoilerplate(line string) bool {
	if _, ok := c.brands[line]; ok {
		return true
	}
	for _, re := range boilerplateLines {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
