package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webnovel"
)

// Ensure LoggingChapterService implements webnovel.ChapterService.
var _ webnovel.ChapterService = (*LoggingChapterService)(nil)

// LoggingChapterService wraps a ChapterService, logging batch inserts.
// Reads are delegated silently.
type LoggingChapterService struct {
	next   webnovel.ChapterService
	logger *slog.Logger
}

// NewLoggingChapterService creates a new LoggingChapterService.
func NewLoggingChapterService(next webnovel.ChapterService, logger *slog.Logger) *LoggingChapterService {
	return &LoggingChapterService{next: next, logger: logger}
}

// InsertChapters delegates to the wrapped service and logs the batch.
func (s *LoggingChapterService) InsertChapters(ctx context.Context, novelID string, chapters []*webnovel.Chapter) (err error) {
	defer func(begin time.Time) {
		attrs := []any{"novel", novelID, "count", len(chapters), "duration", time.Since(begin)}
		if len(chapters) > 0 {
			attrs = append(attrs, "from", chapters[0].Position)
		}
		if err != nil {
			s.logger.Error("insert chapters", append(attrs, "err", err)...)
			return
		}
		s.logger.Debug("insert chapters", attrs...)
	}(time.Now())
	return s.next.InsertChapters(ctx, novelID, chapters)
}

func (s *LoggingChapterService) CountChapters(ctx context.Context, novelID string) (int, error) {
	return s.next.CountChapters(ctx, novelID)
}

func (s *LoggingChapterService) FindChapters(ctx context.Context, filter webnovel.ChapterFilter) ([]*webnovel.Chapter, error) {
	return s.next.FindChapters(ctx, filter)
}
