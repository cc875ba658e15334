package slog_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/webnovel"
	"github.com/fwojciec/webnovel/mock"
	wnslog "github.com/fwojciec/webnovel/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingRuleService(t *testing.T) {
	t.Parallel()

	t.Run("logs resolved rule name", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.RuleService{
			ResolveRuleFn: func(ctx context.Context, host string) (*webnovel.Rule, error) {
				return &webnovel.Rule{Name: "biquge"}, nil
			},
		}

		svc := wnslog.NewLoggingRuleService(inner, debugLogger(&buf))
		rule, err := svc.ResolveRule(context.Background(), "www.biquge.com")

		require.NoError(t, err)
		assert.Equal(t, "biquge", rule.Name)
		assert.Contains(t, buf.String(), "host=www.biquge.com")
		assert.Contains(t, buf.String(), "rule=biquge")
	})

	t.Run("logs unresolved host", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.RuleService{
			ResolveRuleFn: func(ctx context.Context, host string) (*webnovel.Rule, error) {
				return nil, webnovel.Errorf(webnovel.ENOTFOUND, "no rule for %s", host)
			},
		}

		svc := wnslog.NewLoggingRuleService(inner, debugLogger(&buf))
		_, err := svc.ResolveRule(context.Background(), "unknown.org")

		assert.Equal(t, webnovel.ENOTFOUND, webnovel.ErrorCode(err))
		assert.Contains(t, buf.String(), "rule=(none)")
	})

	t.Run("logs writes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.RuleService{
			CreateRuleFn: func(ctx context.Context, rule *webnovel.Rule) error { return nil },
			DeleteRuleFn: func(ctx context.Context, name string) error { return nil },
		}

		svc := wnslog.NewLoggingRuleService(inner, debugLogger(&buf))
		require.NoError(t, svc.CreateRule(context.Background(), &webnovel.Rule{Name: "biquge", Domain: "biquge.com"}))
		require.NoError(t, svc.DeleteRule(context.Background(), "biquge"))

		output := buf.String()
		assert.Contains(t, output, "msg=\"create rule\"")
		assert.Contains(t, output, "domain=biquge.com")
		assert.Contains(t, output, "msg=\"delete rule\"")
	})
}
