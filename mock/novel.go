package mock

import (
	"context"

	"github.com/fwojciec/webnovel"
)

var _ webnovel.NovelService = (*NovelService)(nil)

// NovelService is a mock implementation of webnovel.NovelService.
type NovelService struct {
	CreateNovelFn          func(ctx context.Context, novel *webnovel.Novel) error
	FindNovelByIDFn        func(ctx context.Context, id string) (*webnovel.Novel, error)
	FindNovelBySourceURLFn func(ctx context.Context, sourceURL string) (*webnovel.Novel, error)
	FindNovelsFn           func(ctx context.Context) ([]*webnovel.Novel, error)
	UpdateTotalChaptersFn  func(ctx context.Context, id string, total int) error
	DeleteNovelFn          func(ctx context.Context, id string) error
}

func (s *NovelService) CreateNovel(ctx context.Context, novel *webnovel.Novel) error {
	return s.CreateNovelFn(ctx, novel)
}

func (s *NovelService) FindNovelByID(ctx context.Context, id string) (*webnovel.Novel, error) {
	return s.FindNovelByIDFn(ctx, id)
}

func (s *NovelService) FindNovelBySourceURL(ctx context.Context, sourceURL string) (*webnovel.Novel, error) {
	return s.FindNovelBySourceURLFn(ctx, sourceURL)
}

func (s *NovelService) FindNovels(ctx context.Context) ([]*webnovel.Novel, error) {
	return s.FindNovelsFn(ctx)
}

func (s *NovelService) UpdateTotalChapters(ctx context.Context, id string, total int) error {
	return s.UpdateTotalChaptersFn(ctx, id, total)
}

func (s *NovelService) DeleteNovel(ctx context.Context, id string) error {
	return s.DeleteNovelFn(ctx, id)
}
