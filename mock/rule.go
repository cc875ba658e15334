package mock

import (
	"context"

	"github.com/fwojciec/webnovel"
)

var _ webnovel.RuleService = (*RuleService)(nil)

// RuleService is a mock implementation of webnovel.RuleService.
type RuleService struct {
	CreateRuleFn     func(ctx context.Context, rule *webnovel.Rule) error
	FindRuleByNameFn func(ctx context.Context, name string) (*webnovel.Rule, error)
	FindRulesFn      func(ctx context.Context) ([]*webnovel.Rule, error)
	ResolveRuleFn    func(ctx context.Context, host string) (*webnovel.Rule, error)
	UpdateRuleFn     func(ctx context.Context, rule *webnovel.Rule) error
	DeleteRuleFn     func(ctx context.Context, name string) error
}

func (s *RuleService) CreateRule(ctx context.Context, rule *webnovel.Rule) error {
	return s.CreateRuleFn(ctx, rule)
}

func (s *RuleService) FindRuleByName(ctx context.Context, name string) (*webnovel.Rule, error) {
	return s.FindRuleByNameFn(ctx, name)
}

func (s *RuleService) FindRules(ctx context.Context) ([]*webnovel.Rule, error) {
	return s.FindRulesFn(ctx)
}

func (s *RuleService) ResolveRule(ctx context.Context, host string) (*webnovel.Rule, error) {
	return s.ResolveRuleFn(ctx, host)
}

func (s *RuleService) UpdateRule(ctx context.Context, rule *webnovel.Rule) error {
	return s.UpdateRuleFn(ctx, rule)
}

func (s *RuleService) DeleteRule(ctx context.Context, name string) error {
	return s.DeleteRuleFn(ctx, name)
}
