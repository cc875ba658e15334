package main

import (
	"fmt"

	"github.com/fwojciec/webnovel"
	"github.com/fwojciec/webnovel/download"
)

// resolveRule returns the named rule, or the rule owning rawURL's host.
func resolveRule(deps *Dependencies, name, rawURL string) (*webnovel.Rule, error) {
	if name != "" {
		return deps.Rules.FindRuleByName(deps.Ctx, name)
	}
	u, err := webnovel.ParseSourceURL(rawURL)
	if err != nil {
		return nil, err
	}
	rule, err := deps.Rules.ResolveRule(deps.Ctx, u.Hostname())
	if webnovel.ErrorCode(err) == webnovel.ENOTFOUND {
		return nil, webnovel.Errorf(webnovel.ENOTFOUND, "no rule for %s. Add one with 'webnovel rule add %s'", u.Hostname(), u.Hostname())
	}
	return rule, err
}

// Run executes the download command.
func (c *DownloadCmd) Run(deps *Dependencies) error {
	if c.Resume && c.Restart {
		return deps.fail(webnovel.Errorf(webnovel.EINVALID, "--resume and --restart cannot be combined"))
	}

	rule, err := resolveRule(deps, c.Rule, c.URL)
	if err != nil {
		return deps.fail(err)
	}

	d, err := deps.NewDownloader(c.FetchFlags)
	if err != nil {
		return deps.fail(err)
	}
	defer d.Fetcher.Close()
	d.Concurrency = c.Concurrency
	d.BatchSize = c.Batch
	d.StaggerDelay = c.Stagger
	if c.Stagger == 0 {
		d.StaggerDelay = -1
	}
	d.RetryDelays = download.BackoffDelays(c.Retries)

	index, err := d.FetchIndex(deps.Ctx, c.URL, rule)
	if err != nil {
		return deps.fail(err)
	}

	advisor := &download.Advisor{Novels: deps.Novels, Chapters: deps.Chapters}
	decision, err := advisor.Check(deps.Ctx, index.URL, index.Chapters)
	if err != nil {
		return deps.fail(err)
	}
	if decision.AlreadyComplete() && !c.Restart && !decision.Diverged {
		fmt.Fprintf(deps.Stdout, "%q is already complete (%d chapters, id %s)\n", decision.Title, decision.Downloaded, decision.NovelID)
		return nil
	}
	action, err := c.action(decision)
	if err != nil {
		return deps.fail(err)
	}

	job := download.NewJob(index.URL, rule)
	job.Index = index
	if err := job.Apply(decision, action); err != nil {
		return deps.fail(err)
	}
	if deps.Track != nil {
		deps.Track(job)
		defer deps.Track(nil)
	}

	title := index.Metadata.Title
	if title == "" {
		title = webnovel.DefaultNovelTitle
	}
	if job.Offset > 0 {
		fmt.Fprintf(deps.Stdout, "Resuming %q at chapter %d of %d\n", title, job.Offset+1, len(index.Chapters))
	} else {
		fmt.Fprintf(deps.Stdout, "Downloading %q: %d chapters\n", title, len(index.Chapters))
	}

	progress := func(p download.Progress) {
		fmt.Fprintf(deps.Stderr, "\r  [%d/%d] %s\033[K", p.Completed, p.Total, p.Title)
		if p.Completed == p.Total {
			fmt.Fprintln(deps.Stderr)
		}
	}

	result, err := d.Run(deps.Ctx, job, progress)
	if webnovel.IsCanceled(err) && result != nil && result.Novel != nil {
		fmt.Fprintf(deps.Stderr, "\n")
		fmt.Fprintf(deps.Stdout, "Stopped %q: %d of %d chapters stored (id %s). Run again with --resume to continue.\n",
			result.Novel.Title, result.Novel.TotalChapters, result.Total, result.Novel.ID)
		return err
	}
	if err != nil {
		return deps.fail(err)
	}

	fmt.Fprintf(deps.Stdout, "Saved %q: %d chapters stored, %d new, %d failed (id %s)\n",
		result.Novel.Title, result.Novel.TotalChapters, result.Persisted, result.Failed, result.Novel.ID)
	return nil
}

// action chooses how to continue given what an earlier download left.
func (c *DownloadCmd) action(decision *webnovel.ResumeDecision) (webnovel.ResumeAction, error) {
	switch {
	case !decision.Exists(), c.Restart:
		return webnovel.ActionRestart, nil
	case c.Resume && decision.Diverged && !c.Force:
		return webnovel.ActionCancel, webnovel.Errorf(webnovel.EINVALID,
			"the chapter list of %q changed since it was downloaded. Use --restart, or --resume --force to continue anyway", decision.Title)
	case c.Resume:
		return webnovel.ActionResume, nil
	}
	return webnovel.ActionCancel, webnovel.Errorf(webnovel.EINVALID,
		"%q was already downloaded (%d of %d chapters). Use --resume to continue or --restart to start over",
		decision.Title, decision.Downloaded, decision.NewTotal)
}
