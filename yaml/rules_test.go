package yaml_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fwojciec/webnovel"
	"github.com/fwojciec/webnovel/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRules(t *testing.T) {
	t.Parallel()

	t.Run("decodes selectors and remove list", func(t *testing.T) {
		t.Parallel()

		src := `
rules:
  - name: biquge
    domain: www.biquge.com
    chapterList: "#list dd a"
    chapterTitle: span
    content: "#content"
    remove:
      - .ads
      - script
  - name: uukanshu
    domain: uukanshu.com
    chapterList: "#chapterList li a"
    chapterLink: a
    content: "#contentbox"
    remove: ".ad_content, p.tip"
`
		rules, err := yaml.DecodeRules(strings.NewReader(src))

		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, &webnovel.Rule{
			Name:                 "biquge",
			Domain:               "www.biquge.com",
			ChapterListSelector:  "#list dd a",
			ChapterTitleSelector: "span",
			ContentSelector:      "#content",
			RemoveSelectors:      []string{".ads", "script"},
		}, rules[0])
		assert.Equal(t, "a", rules[1].ChapterLinkSelector)
		assert.Equal(t, []string{".ad_content", "p.tip"}, rules[1].RemoveSelectors)
	})

	t.Run("incomplete rule names missing fields", func(t *testing.T) {
		t.Parallel()

		src := `
rules:
  - name: ok
    domain: a.com
    chapterList: a
    content: p
  - name: broken
    chapterList: a
`
		_, err := yaml.DecodeRules(strings.NewReader(src))

		require.Error(t, err)
		assert.Equal(t, webnovel.EINVALID, webnovel.ErrorCode(err))
		assert.Equal(t, []string{"domain", "contentSelector"}, webnovel.ErrorFields(err))
		assert.Contains(t, webnovel.ErrorMessage(err), "rule 2 (broken)")
	})

	t.Run("malformed yaml is a parse error", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.DecodeRules(strings.NewReader("rules: [unclosed"))

		assert.Equal(t, webnovel.EPARSE, webnovel.ErrorCode(err))
	})

	t.Run("remove mapping is rejected", func(t *testing.T) {
		t.Parallel()

		src := `
rules:
  - domain: a.com
    chapterList: a
    content: p
    remove: {bad: true}
`
		_, err := yaml.DecodeRules(strings.NewReader(src))

		assert.Equal(t, webnovel.EPARSE, webnovel.ErrorCode(err))
	})

	t.Run("empty file has no rules", func(t *testing.T) {
		t.Parallel()

		rules, err := yaml.DecodeRules(strings.NewReader(""))

		require.NoError(t, err)
		assert.Empty(t, rules)
	})
}

func TestEncodeRules(t *testing.T) {
	t.Parallel()

	rules := []*webnovel.Rule{{
		Name:                "biquge",
		Domain:              "www.biquge.com",
		ChapterListSelector: "#list dd a",
		ContentSelector:     "#content",
		RemoveSelectors:     []string{".ads"},
	}}

	var buf bytes.Buffer
	require.NoError(t, yaml.EncodeRules(&buf, rules))
	assert.Contains(t, buf.String(), "#list dd a")

	decoded, err := yaml.DecodeRules(&buf)
	require.NoError(t, err)
	assert.Equal(t, rules, decoded)
}
