package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/webnovel"
	"github.com/fwojciec/webnovel/yaml"
)

// saveRule creates rule, or replaces the rule with the same name when
// replace is set.
func saveRule(deps *Dependencies, rule *webnovel.Rule, replace bool) (created bool, err error) {
	if rule.Name == "" {
		rule.Name = webnovel.NormalizeDomain(rule.Domain)
	}
	if replace {
		if _, err := deps.Rules.FindRuleByName(deps.Ctx, rule.Name); err == nil {
			return false, deps.Rules.UpdateRule(deps.Ctx, rule)
		} else if webnovel.ErrorCode(err) != webnovel.ENOTFOUND {
			return false, err
		}
	}
	return true, deps.Rules.CreateRule(deps.Ctx, rule)
}

// Run executes the rule add command.
func (c *RuleAddCmd) Run(deps *Dependencies) error {
	var remove []string
	for _, r := range c.Remove {
		remove = append(remove, webnovel.SplitSelectors(r)...)
	}
	rule := &webnovel.Rule{
		Name:                 c.Name,
		Domain:               c.Domain,
		ChapterListSelector:  c.ChapterList,
		ChapterTitleSelector: c.ChapterTitle,
		ChapterLinkSelector:  c.ChapterLink,
		ContentSelector:      c.Content,
		RemoveSelectors:      remove,
	}

	created, err := saveRule(deps, rule, c.Replace)
	if err != nil {
		return deps.fail(err)
	}
	verb := "Added"
	if !created {
		verb = "Updated"
	}
	fmt.Fprintf(deps.Stdout, "%s rule %q for %s\n", verb, rule.Name, rule.Domain)
	return nil
}

// Run executes the rule list command.
func (c *RuleListCmd) Run(deps *Dependencies) error {
	rules, err := deps.Rules.FindRules(deps.Ctx)
	if err != nil {
		return deps.fail(err)
	}
	if len(rules) == 0 {
		fmt.Fprintln(deps.Stdout, "No rules found. Use 'webnovel rule add' to create one.")
		return nil
	}
	for _, r := range rules {
		fmt.Fprintf(deps.Stdout, "%s  %s  list=%q content=%q", r.Name, r.Domain, r.ChapterListSelector, r.ContentSelector)
		if len(r.RemoveSelectors) > 0 {
			fmt.Fprintf(deps.Stdout, " remove=%q", strings.Join(r.RemoveSelectors, ","))
		}
		fmt.Fprintln(deps.Stdout)
	}
	return nil
}

// Run executes the rule delete command.
func (c *RuleDeleteCmd) Run(deps *Dependencies) error {
	if err := deps.Rules.DeleteRule(deps.Ctx, c.Name); err != nil {
		if webnovel.ErrorCode(err) == webnovel.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: rule %q not found. Use 'webnovel rule list' to see available rules.\n", c.Name)
			return err
		}
		return deps.fail(err)
	}
	fmt.Fprintf(deps.Stdout, "Deleted rule %q\n", c.Name)
	return nil
}

// Run executes the rule test command.
func (c *RuleTestCmd) Run(deps *Dependencies) error {
	rule, err := resolveRule(deps, c.Rule, c.URL)
	if err != nil {
		return deps.fail(err)
	}
	d, err := deps.NewDownloader(c.FetchFlags)
	if err != nil {
		return deps.fail(err)
	}
	defer d.Fetcher.Close()

	result := d.TestRule(deps.Ctx, c.URL, rule)
	if !result.OK() {
		fmt.Fprintf(deps.Stderr, "error: %s\n", result.Error)
		return webnovel.Errorf(webnovel.EINVALID, "rule %q failed: %s", rule.Name, result.Error)
	}

	fmt.Fprintf(deps.Stdout, "Rule:     %s\n", rule.Name)
	fmt.Fprintf(deps.Stdout, "Title:    %s\n", result.Title)
	fmt.Fprintf(deps.Stdout, "Author:   %s\n", result.Author)
	fmt.Fprintf(deps.Stdout, "Chapters: %d\n", result.ChapterCount)
	if result.Sample != "" {
		fmt.Fprintf(deps.Stdout, "Sample:\n%s\n", result.Sample)
	}
	if result.ChapterCount == 0 {
		fmt.Fprintln(deps.Stdout, "Warning: the chapter list selector matched nothing.")
	}
	return nil
}

// Run executes the rule import command.
func (c *RuleImportCmd) Run(deps *Dependencies) error {
	f, err := os.Open(c.File)
	if err != nil {
		return deps.fail(err)
	}
	defer f.Close()

	rules, err := yaml.DecodeRules(f)
	if err != nil {
		return deps.fail(err)
	}

	var added, updated int
	for _, rule := range rules {
		created, err := saveRule(deps, rule, c.Replace)
		if err != nil {
			return deps.fail(err)
		}
		if created {
			added++
		} else {
			updated++
		}
	}
	fmt.Fprintf(deps.Stdout, "Imported %d rules (%d added, %d updated)\n", len(rules), added, updated)
	return nil
}

// Run executes the rule export command.
func (c *RuleExportCmd) Run(deps *Dependencies) error {
	rules, err := deps.Rules.FindRules(deps.Ctx)
	if err != nil {
		return deps.fail(err)
	}
	if err := yaml.EncodeRules(deps.Stdout, rules); err != nil {
		return deps.fail(err)
	}
	return nil
}
