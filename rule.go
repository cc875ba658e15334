package webnovel

import (
	"context"
	"strings"
	"time"
)

// Names of the rule fields required for a rule to be usable.
const (
	FieldDomain              = "domain"
	FieldChapterListSelector = "chapterListSelector"
	FieldContentSelector     = "contentSelector"
)

// Rule is a named set of CSS selectors describing how to read one site.
// Selectors are opaque strings; only their presence is validated.
type Rule struct {
	ID                   string    `json:"id" yaml:"-"`
	Name                 string    `json:"name" yaml:"name"`
	Domain               string    `json:"domain" yaml:"domain"`
	ChapterListSelector  string    `json:"chapterListSelector" yaml:"chapterList"`
	ChapterTitleSelector string    `json:"chapterTitleSelector" yaml:"chapterTitle"`
	ChapterLinkSelector  string    `json:"chapterLinkSelector" yaml:"chapterLink"`
	ContentSelector      string    `json:"contentSelector" yaml:"content"`
	RemoveSelectors      []string  `json:"removeSelectors" yaml:"-"`
	CreatedAt            time.Time `json:"createdAt" yaml:"-"`
}

// Clone returns a deep copy of the rule. Downloads hold a clone so that
// edits made while a job is running do not reach it.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	c := *r
	c.RemoveSelectors = append([]string(nil), r.RemoveSelectors...)
	return &c
}

// Validate returns an EINVALID error naming every missing required field.
func (r *Rule) Validate() error {
	v := ValidateRule(r)
	if v.OK() {
		return nil
	}
	return InvalidFields(v.MissingFields, "rule is incomplete")
}

// RuleValidation is the outcome of ValidateRule.
type RuleValidation struct {
	MissingFields []string `json:"missingFields"`
}

// OK reports whether the rule is usable.
func (v RuleValidation) OK() bool {
	return len(v.MissingFields) == 0
}

// ValidateRule checks that domain, chapter-list selector and content selector
// are present. It reports every missing field rather than only the first.
func ValidateRule(r *Rule) RuleValidation {
	if r == nil {
		return RuleValidation{MissingFields: []string{FieldDomain, FieldChapterListSelector, FieldContentSelector}}
	}
	var missing []string
	if strings.TrimSpace(r.Domain) == "" {
		missing = append(missing, FieldDomain)
	}
	if strings.TrimSpace(r.ChapterListSelector) == "" {
		missing = append(missing, FieldChapterListSelector)
	}
	if strings.TrimSpace(r.ContentSelector) == "" {
		missing = append(missing, FieldContentSelector)
	}
	return RuleValidation{MissingFields: missing}
}

// JoinSelectors encodes remove selectors in their stored comma-joined form.
func JoinSelectors(selectors []string) string {
	parts := make([]string, 0, len(selectors))
	for _, s := range selectors {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ",")
}

// SplitSelectors decodes a comma-joined selector string, dropping blanks.
func SplitSelectors(s string) []string {
	var selectors []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			selectors = append(selectors, part)
		}
	}
	return selectors
}

// RuleService represents a service for managing extraction rules.
type RuleService interface {
	// CreateRule validates and stores a new rule.
	// Returns EINVALID naming the missing fields if the rule is incomplete.
	CreateRule(ctx context.Context, rule *Rule) error

	// FindRuleByName retrieves a rule by its unique name.
	// Returns ENOTFOUND if the rule does not exist.
	FindRuleByName(ctx context.Context, name string) (*Rule, error)

	// FindRules retrieves all rules ordered by name.
	FindRules(ctx context.Context) ([]*Rule, error)

	// ResolveRule returns the rule owning a host, trying the exact host
	// first and then each parent domain. Returns ENOTFOUND if none match.
	ResolveRule(ctx context.Context, host string) (*Rule, error)

	// UpdateRule replaces the selectors of an existing rule.
	// Returns ENOTFOUND if the rule does not exist.
	UpdateRule(ctx context.Context, rule *Rule) error

	// DeleteRule removes a rule by name.
	// Returns ENOTFOUND if the rule does not exist.
	DeleteRule(ctx context.Context, name string) error
}

// ParentDomains returns host followed by each parent domain with at least
// two labels: "www.a.example.com" yields itself, "a.example.com", "example.com".
func ParentDomains(host string) []string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return nil
	}
	domains := []string{host}
	for {
		i := strings.IndexByte(host, '.')
		if i < 0 {
			break
		}
		host = host[i+1:]
		if !strings.Contains(host, ".") {
			break
		}
		domains = append(domains, host)
	}
	return domains
}

// NormalizeDomain reduces a user-entered domain or URL to a lowercase host:
// "https://WWW.Example.com/book" becomes "www.example.com".
func NormalizeDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 && !strings.Contains(s[i:], "]") {
		s = s[:i]
	}
	return strings.TrimSuffix(s, ".")
}
