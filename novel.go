package webnovel

import (
	"context"
	"time"
)

// DefaultNovelTitle is stored when a page yields no title at all.
const DefaultNovelTitle = "Untitled"

// NovelMetadata holds the descriptive fields read from an index page.
// Each field is independently optional.
type NovelMetadata struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// Complete reports whether title, author and description were all found.
func (m NovelMetadata) Complete() bool {
	return m.Title != "" && m.Author != "" && m.Description != ""
}

// Valid reports whether at least a title was found.
func (m NovelMetadata) Valid() bool {
	return m.Title != ""
}

// Novel represents a downloaded work.
type Novel struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	SourceURL     string    `json:"sourceUrl"`
	TotalChapters int       `json:"totalChapters"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Validate returns an error if the novel contains invalid fields.
func (n *Novel) Validate() error {
	if n.Title == "" {
		return Errorf(EINVALID, "novel title required")
	}
	if n.SourceURL == "" {
		return Errorf(EINVALID, "novel source URL required")
	}
	return nil
}

// NovelService represents a service for managing novels.
type NovelService interface {
	// CreateNovel creates a new novel and assigns its ID.
	CreateNovel(ctx context.Context, novel *Novel) error

	// FindNovelByID retrieves a novel by ID.
	// Returns ENOTFOUND if the novel does not exist.
	FindNovelByID(ctx context.Context, id string) (*Novel, error)

	// FindNovelBySourceURL retrieves the most recently created novel
	// downloaded from the given index URL.
	// Returns ENOTFOUND if no novel has that source.
	FindNovelBySourceURL(ctx context.Context, sourceURL string) (*Novel, error)

	// FindNovels retrieves all novels, most recent first.
	FindNovels(ctx context.Context) ([]*Novel, error)

	// UpdateTotalChapters records how many chapters a novel has.
	// Returns ENOTFOUND if the novel does not exist.
	UpdateTotalChapters(ctx context.Context, id string, total int) error

	// DeleteNovel permanently removes a novel and its chapters.
	// Returns ENOTFOUND if the novel does not exist.
	DeleteNovel(ctx context.Context, id string) error
}
