package main

import (
	"fmt"

	"github.com/fwojciec/webnovel/download"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	rule, err := resolveRule(deps, c.Rule, c.URL)
	if err != nil {
		return deps.fail(err)
	}
	d, err := deps.NewDownloader(c.FetchFlags)
	if err != nil {
		return deps.fail(err)
	}
	defer d.Fetcher.Close()

	index, err := d.FetchIndex(deps.Ctx, c.URL, rule)
	if err != nil {
		return deps.fail(err)
	}
	advisor := &download.Advisor{Novels: deps.Novels, Chapters: deps.Chapters}
	decision, err := advisor.Check(deps.Ctx, index.URL, index.Chapters)
	if err != nil {
		return deps.fail(err)
	}

	switch {
	case !decision.Exists():
		fmt.Fprintf(deps.Stdout, "Not downloaded yet: %d chapters available\n", decision.NewTotal)
	case decision.AlreadyComplete():
		fmt.Fprintf(deps.Stdout, "%q is complete: %d of %d chapters (id %s)\n", decision.Title, decision.Downloaded, decision.NewTotal, decision.NovelID)
	default:
		fmt.Fprintf(deps.Stdout, "%q is partial: %d of %d chapters (id %s)\n", decision.Title, decision.Downloaded, decision.NewTotal, decision.NovelID)
	}
	if decision.Diverged {
		fmt.Fprintln(deps.Stdout, "Warning: the chapter list changed since the download; resuming may misalign chapters.")
	}
	return nil
}

// Run executes the preview command.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	rule, err := resolveRule(deps, c.Rule, c.URL)
	if err != nil {
		return deps.fail(err)
	}
	d, err := deps.NewDownloader(c.FetchFlags)
	if err != nil {
		return deps.fail(err)
	}
	defer d.Fetcher.Close()

	index, err := d.FetchIndex(deps.Ctx, c.URL, rule)
	if err != nil {
		return deps.fail(err)
	}

	meta := index.Metadata
	fmt.Fprintf(deps.Stdout, "Title:    %s\n", meta.Title)
	if meta.Author != "" {
		fmt.Fprintf(deps.Stdout, "Author:   %s\n", meta.Author)
	}
	if meta.Description != "" {
		fmt.Fprintf(deps.Stdout, "About:    %s\n", meta.Description)
	}
	fmt.Fprintf(deps.Stdout, "Chapters: %d\n\n", len(index.Chapters))

	shown := index.Chapters
	if c.Limit > 0 && len(shown) > c.Limit {
		shown = shown[:c.Limit]
	}
	for _, ch := range shown {
		fmt.Fprintf(deps.Stdout, "%5d  %s  %s\n", ch.Index+1, ch.Title, ch.URL)
	}
	if rest := len(index.Chapters) - len(shown); rest > 0 {
		fmt.Fprintf(deps.Stdout, "  ... and %d more\n", rest)
	}
	return nil
}
