package main

import (
	"fmt"

	"github.com/fwojciec/webnovel"
	"github.com/fwojciec/webnovel/fs"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	novels, err := deps.Novels.FindNovels(deps.Ctx)
	if err != nil {
		return deps.fail(err)
	}

	if len(novels) == 0 {
		fmt.Fprintln(deps.Stdout, "No novels found. Use 'webnovel download' to fetch one.")
		return nil
	}

	for _, n := range novels {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d chapters  %s\n", n.ID, n.Title, n.TotalChapters, n.SourceURL)
	}
	return nil
}

// Run executes the chapters command.
func (c *ChaptersCmd) Run(deps *Dependencies) error {
	novel, err := deps.Novels.FindNovelByID(deps.Ctx, c.NovelID)
	if err != nil {
		return deps.fail(err)
	}
	chapters, err := deps.Chapters.FindChapters(deps.Ctx, webnovel.ChapterFilter{NovelID: &novel.ID})
	if err != nil {
		return deps.fail(err)
	}

	fmt.Fprintf(deps.Stdout, "%s (%d chapters)\n", novel.Title, len(chapters))
	for _, ch := range chapters {
		marker := ""
		if webnovel.IsFailurePlaceholder(ch.Content) {
			marker = "  [failed]"
		}
		fmt.Fprintf(deps.Stdout, "%5d  %s%s\n", ch.Position+1, ch.Title, marker)
		if c.Full {
			fmt.Fprintf(deps.Stdout, "\n%s\n\n", ch.Content)
		}
	}
	return nil
}

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	novel, err := deps.Novels.FindNovelByID(deps.Ctx, c.NovelID)
	if err != nil {
		return deps.fail(err)
	}
	path, n, err := fs.NewWriter(deps.Chapters).Export(deps.Ctx, novel, c.Path)
	if err != nil {
		return deps.fail(err)
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d chapters of %q to %s\n", n, novel.Title, path)
	return nil
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return webnovel.Errorf(webnovel.EINVALID, "use --force to confirm deletion")
	}

	novel, err := deps.Novels.FindNovelByID(deps.Ctx, c.NovelID)
	if webnovel.ErrorCode(err) == webnovel.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "error: novel %q not found. Use 'webnovel list' to see downloaded novels.\n", c.NovelID)
		return err
	} else if err != nil {
		return deps.fail(err)
	}

	if err := deps.Novels.DeleteNovel(deps.Ctx, novel.ID); err != nil {
		return deps.fail(err)
	}
	fmt.Fprintf(deps.Stdout, "Deleted %q\n", novel.Title)
	return nil
}
