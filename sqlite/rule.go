package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/webnovel"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ webnovel.RuleService = (*RuleService)(nil)

// RuleService implements webnovel.RuleService using SQLite.
type RuleService struct {
	db *DB
}

// NewRuleService creates a new RuleService.
func NewRuleService(db *DB) *RuleService {
	return &RuleService{db: db}
}

const ruleColumns = `id, name, domain, chapter_list_selector, chapter_title_selector,
	chapter_link_selector, content_selector, remove_selectors, created_at`

// CreateRule validates and stores a new rule. The domain is normalized to
// a bare lowercase host.
func (s *RuleService) CreateRule(ctx context.Context, rule *webnovel.Rule) error {
	rule.Domain = webnovel.NormalizeDomain(rule.Domain)
	if err := rule.Validate(); err != nil {
		return err
	}
	if rule.Name == "" {
		rule.Name = rule.Domain
	}

	if _, err := s.FindRuleByName(ctx, rule.Name); err == nil {
		return webnovel.Errorf(webnovel.EINVALID, "rule %q already exists", rule.Name)
	} else if webnovel.ErrorCode(err) != webnovel.ENOTFOUND {
		return err
	}

	rule.ID = uuid.New().String()
	rule.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rule.ID, rule.Name, rule.Domain, rule.ChapterListSelector, rule.ChapterTitleSelector,
		rule.ChapterLinkSelector, rule.ContentSelector, webnovel.JoinSelectors(rule.RemoveSelectors),
		rule.CreatedAt.Format(time.RFC3339))

	return err
}

// FindRuleByName retrieves a rule by name.
func (s *RuleService) FindRuleByName(ctx context.Context, name string) (*webnovel.Rule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE name = ?`, name)
	return scanRule(row)
}

// FindRules retrieves all rules ordered by name.
func (s *RuleService) FindRules(ctx context.Context) ([]*webnovel.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM rules ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*webnovel.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// ResolveRule returns the rule registered for host or its nearest parent
// domain. Among rules for the same domain the newest wins.
func (s *RuleService) ResolveRule(ctx context.Context, host string) (*webnovel.Rule, error) {
	for _, domain := range webnovel.ParentDomains(webnovel.NormalizeDomain(host)) {
		row := s.db.QueryRowContext(ctx, `
			SELECT `+ruleColumns+` FROM rules
			WHERE domain = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT 1
		`, domain)
		rule, err := scanRule(row)
		if err == nil {
			return rule, nil
		}
		if webnovel.ErrorCode(err) != webnovel.ENOTFOUND {
			return nil, err
		}
	}
	return nil, webnovel.Errorf(webnovel.ENOTFOUND, "no rule for %s", host)
}

// UpdateRule replaces the domain and selectors of the rule with the same name.
func (s *RuleService) UpdateRule(ctx context.Context, rule *webnovel.Rule) error {
	rule.Domain = webnovel.NormalizeDomain(rule.Domain)
	if err := rule.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE rules SET domain = ?, chapter_list_selector = ?, chapter_title_selector = ?,
			chapter_link_selector = ?, content_selector = ?, remove_selectors = ?
		WHERE name = ?
	`, rule.Domain, rule.ChapterListSelector, rule.ChapterTitleSelector, rule.ChapterLinkSelector,
		rule.ContentSelector, webnovel.JoinSelectors(rule.RemoveSelectors), rule.Name)
	if err != nil {
		return err
	}
	return requireAffected(result, "rule not found")
}

// DeleteRule removes a rule by name.
func (s *RuleService) DeleteRule(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM rules WHERE name = ?", name)
	if err != nil {
		return err
	}
	return requireAffected(result, "rule not found")
}

func scanRule(row scanner) (*webnovel.Rule, error) {
	var rule webnovel.Rule
	var remove, createdAt string

	err := row.Scan(&rule.ID, &rule.Name, &rule.Domain, &rule.ChapterListSelector, &rule.ChapterTitleSelector,
		&rule.ChapterLinkSelector, &rule.ContentSelector, &remove, &createdAt)
	if err == sql.ErrNoRows {
		return nil, webnovel.Errorf(webnovel.ENOTFOUND, "rule not found")
	}
	if err != nil {
		return nil, err
	}

	rule.RemoveSelectors = webnovel.SplitSelectors(remove)
	if rule.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &rule, nil
}
