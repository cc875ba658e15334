package download

import (
	"context"

	"github.com/fwojciec/webnovel"
)

// Advisor reports what a previous download of the same source left behind.
type Advisor struct {
	Novels   webnovel.NovelService
	Chapters webnovel.ChapterService
}

// Check compares the most recent novel downloaded from sourceURL with a
// freshly extracted chapter list. Only counts decide completeness;
// Diverged additionally flags a source whose list changed under the
// stored chapters.
func (a *Advisor) Check(ctx context.Context, sourceURL string, chapters []webnovel.ChapterReference) (*webnovel.ResumeDecision, error) {
	u, err := webnovel.ParseSourceURL(sourceURL)
	if err != nil {
		return nil, err
	}
	decision := &webnovel.ResumeDecision{NewTotal: len(chapters)}

	novel, err := a.Novels.FindNovelBySourceURL(ctx, u.String())
	if webnovel.ErrorCode(err) == webnovel.ENOTFOUND {
		return decision, nil
	} else if err != nil {
		return nil, databaseError(err, "finding novel")
	}
	decision.NovelID = novel.ID
	decision.Title = novel.Title

	if decision.Downloaded, err = a.Chapters.CountChapters(ctx, novel.ID); err != nil {
		return nil, databaseError(err, "counting chapters")
	}

	switch n := decision.Downloaded; {
	case n == 0:
	case n > len(chapters):
		decision.Diverged = true
	default:
		last := n - 1
		stored, err := a.Chapters.FindChapters(ctx, webnovel.ChapterFilter{NovelID: &novel.ID, Position: &last})
		if err != nil {
			return nil, databaseError(err, "loading last chapter")
		}
		if len(stored) == 1 && stored[0].SourceURL != chapters[last].URL {
			decision.Diverged = true
		}
	}
	return decision, nil
}
