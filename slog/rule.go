package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webnovel"
)

// Ensure LoggingRuleService implements webnovel.RuleService.
var _ webnovel.RuleService = (*LoggingRuleService)(nil)

// LoggingRuleService wraps a RuleService, logging writes and resolution.
type LoggingRuleService struct {
	next   webnovel.RuleService
	logger *slog.Logger
}

// NewLoggingRuleService creates a new LoggingRuleService.
func NewLoggingRuleService(next webnovel.RuleService, logger *slog.Logger) *LoggingRuleService {
	return &LoggingRuleService{next: next, logger: logger}
}

func (s *LoggingRuleService) CreateRule(ctx context.Context, rule *webnovel.Rule) (err error) {
	defer func() {
		s.logger.Info("create rule", "name", rule.Name, "domain", rule.Domain, "err", err)
	}()
	return s.next.CreateRule(ctx, rule)
}

func (s *LoggingRuleService) FindRuleByName(ctx context.Context, name string) (*webnovel.Rule, error) {
	return s.next.FindRuleByName(ctx, name)
}

func (s *LoggingRuleService) FindRules(ctx context.Context) ([]*webnovel.Rule, error) {
	return s.next.FindRules(ctx)
}

// ResolveRule delegates to the wrapped service and logs which rule, if any,
// owns the host.
func (s *LoggingRuleService) ResolveRule(ctx context.Context, host string) (rule *webnovel.Rule, err error) {
	defer func(begin time.Time) {
		name := "(none)"
		if rule != nil {
			name = rule.Name
		}
		s.logger.Info("resolve rule",
			"host", host,
			"rule", name,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.ResolveRule(ctx, host)
}

func (s *LoggingRuleService) UpdateRule(ctx context.Context, rule *webnovel.Rule) (err error) {
	defer func() {
		s.logger.Info("update rule", "name", rule.Name, "err", err)
	}()
	return s.next.UpdateRule(ctx, rule)
}

func (s *LoggingRuleService) DeleteRule(ctx context.Context, name string) (err error) {
	defer func() {
		s.logger.Info("delete rule", "name", name, "err", err)
	}()
	return s.next.DeleteRule(ctx, name)
}
