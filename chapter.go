package webnovel

import (
	"context"
	"strings"
	"time"
)

// ChapterReference is a chapter discovered on an index page but not yet
// fetched. Index is its zero-based position in the discovered list.
type ChapterReference struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Index int    `json:"index"`
}

// Valid reports whether both title and URL are present.
func (r ChapterReference) Valid() bool {
	return r.Title != "" && r.URL != ""
}

// Chapter represents a persisted chapter body.
type Chapter struct {
	ID          string    `json:"id"`
	NovelID     string    `json:"novelId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	Position    int       `json:"position"`
	SourceURL   string    `json:"sourceUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the chapter contains invalid fields.
func (c *Chapter) Validate() error {
	if c.NovelID == "" {
		return Errorf(EINVALID, "chapter novel ID required")
	}
	if c.Position < 0 {
		return Errorf(EINVALID, "chapter position must not be negative")
	}
	return nil
}

// ChapterService represents a service for managing chapters.
type ChapterService interface {
	// InsertChapters stores a batch of chapters for a novel. A chapter whose
	// position is already stored is skipped; stored chapters are never changed.
	InsertChapters(ctx context.Context, novelID string, chapters []*Chapter) error

	// CountChapters returns the number of stored chapters for a novel.
	CountChapters(ctx context.Context, novelID string) (int, error)

	// FindChapters retrieves chapters matching the filter ordered by position.
	FindChapters(ctx context.Context, filter ChapterFilter) ([]*Chapter, error)
}

// ChapterFilter represents a filter for FindChapters.
type ChapterFilter struct {
	NovelID  *string `json:"novelId"`
	Position *int    `json:"position"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// failurePrefix starts every placeholder body written for a chapter that
// could not be downloaded.
const failurePrefix = "[download failed: "

// FailurePlaceholder returns the body stored in place of a chapter that
// could not be fetched or extracted.
func FailurePlaceholder(err error) string {
	reason := "unknown error"
	if err != nil {
		reason = ErrorMessage(err)
		if ErrorCode(err) == EINTERNAL {
			reason = err.Error()
		}
	}
	return failurePrefix + reason + "]"
}

// IsFailurePlaceholder reports whether content was written by FailurePlaceholder.
func IsFailurePlaceholder(content string) bool {
	return strings.HasPrefix(content, failurePrefix)
}
