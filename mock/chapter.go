package mock

import (
	"context"

	"github.com/fwojciec/webnovel"
)

var _ webnovel.ChapterService = (*ChapterService)(nil)

// ChapterService is a mock implementation of webnovel.ChapterService.
type ChapterService struct {
	InsertChaptersFn func(ctx context.Context, novelID string, chapters []*webnovel.Chapter) error
	CountChaptersFn  func(ctx context.Context, novelID string) (int, error)
	FindChaptersFn   func(ctx context.Context, filter webnovel.ChapterFilter) ([]*webnovel.Chapter, error)
}

func (s *ChapterService) InsertChapters(ctx context.Context, novelID string, chapters []*webnovel.Chapter) error {
	return s.InsertChaptersFn(ctx, novelID, chapters)
}

func (s *ChapterService) CountChapters(ctx context.Context, novelID string) (int, error) {
	return s.CountChaptersFn(ctx, novelID)
}

func (s *ChapterService) FindChapters(ctx context.Context, filter webnovel.ChapterFilter) ([]*webnovel.Chapter, error) {
	return s.FindChaptersFn(ctx, filter)
}
