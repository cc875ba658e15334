// Package yaml reads and writes rule files.
//
// A rule file holds a list of rules under the "rules" key:
//
//	rules:
//	  - name: biquge
//	    domain: www.biquge.com
//	    chapterList: "#list dd a"
//	    content: "#content"
//	    remove: [".ads", "script"]
//
// The remove key also accepts a single comma-joined string.
package yaml

import (
	"fmt"
	"io"

	"github.com/fwojciec/webnovel"
	"gopkg.in/yaml.v3"
)

// rulesFile is the document layout of a rule file.
type rulesFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	webnovel.Rule `yaml:",inline"`
	Remove        selectorList `yaml:"remove,omitempty"`
}

// selectorList decodes either a sequence or a comma-joined scalar.
type selectorList []string

func (l *selectorList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = webnovel.SplitSelectors(node.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = webnovel.SplitSelectors(webnovel.JoinSelectors(items))
		return nil
	}
	return fmt.Errorf("line %d: remove must be a string or a list", node.Line)
}

// DecodeRules parses a rule file. Every rule is validated; the first
// incomplete rule is reported as EINVALID naming its position and fields.
func DecodeRules(r io.Reader) ([]*webnovel.Rule, error) {
	var file rulesFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, webnovel.Errorf(webnovel.EPARSE, "invalid rule file: %v", err)
	}

	rules := make([]*webnovel.Rule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		rule := entry.Rule
		rule.RemoveSelectors = []string(entry.Remove)
		if err := rule.Validate(); err != nil {
			return nil, webnovel.InvalidFields(webnovel.ErrorFields(err), "rule %d (%s) is incomplete", i+1, rule.Name)
		}
		rules = append(rules, &rule)
	}
	return rules, nil
}

// EncodeRules writes rules in the layout DecodeRules reads.
func EncodeRules(w io.Writer, rules []*webnovel.Rule) error {
	file := rulesFile{Rules: make([]ruleEntry, 0, len(rules))}
	for _, rule := range rules {
		file.Rules = append(file.Rules, ruleEntry{Rule: *rule, Remove: rule.RemoveSelectors})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&file); err != nil {
		return err
	}
	return enc.Close()
}
