package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/webnovel"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ webnovel.NovelService = (*NovelService)(nil)

// NovelService implements webnovel.NovelService using SQLite.
type NovelService struct {
	db *DB
}

// NewNovelService creates a new NovelService.
func NewNovelService(db *DB) *NovelService {
	return &NovelService{db: db}
}

const novelColumns = "id, title, author, description, source_url, total_chapters, created_at, updated_at"

// CreateNovel creates a new novel.
func (s *NovelService) CreateNovel(ctx context.Context, novel *webnovel.Novel) error {
	if err := novel.Validate(); err != nil {
		return err
	}

	novel.ID = uuid.New().String()
	now := time.Now().UTC()
	novel.CreatedAt = now
	novel.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO novels (`+novelColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, novel.ID, novel.Title, novel.Author, novel.Description, novel.SourceURL, novel.TotalChapters,
		novel.CreatedAt.Format(time.RFC3339), novel.UpdatedAt.Format(time.RFC3339))

	return err
}

// FindNovelByID retrieves a novel by ID.
func (s *NovelService) FindNovelByID(ctx context.Context, id string) (*webnovel.Novel, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+novelColumns+` FROM novels WHERE id = ?`, id)
	return scanNovel(row)
}

// FindNovelBySourceURL retrieves the most recently created novel with the
// given source URL.
func (s *NovelService) FindNovelBySourceURL(ctx context.Context, sourceURL string) (*webnovel.Novel, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+novelColumns+` FROM novels
		WHERE source_url = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, sourceURL)
	return scanNovel(row)
}

// FindNovels retrieves all novels, most recent first.
func (s *NovelService) FindNovels(ctx context.Context) ([]*webnovel.Novel, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+novelColumns+` FROM novels ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var novels []*webnovel.Novel
	for rows.Next() {
		novel, err := scanNovel(rows)
		if err != nil {
			return nil, err
		}
		novels = append(novels, novel)
	}
	return novels, rows.Err()
}

// UpdateTotalChapters records the chapter count of a novel.
func (s *NovelService) UpdateTotalChapters(ctx context.Context, id string, total int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE novels SET total_chapters = ?, updated_at = ? WHERE id = ?
	`, total, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	return requireAffected(result, "novel not found")
}

// DeleteNovel removes a novel and, through the foreign key, its chapters.
func (s *NovelService) DeleteNovel(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM novels WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result, "novel not found")
}

func scanNovel(row scanner) (*webnovel.Novel, error) {
	var novel webnovel.Novel
	var createdAt, updatedAt string

	err := row.Scan(&novel.ID, &novel.Title, &novel.Author, &novel.Description, &novel.SourceURL,
		&novel.TotalChapters, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, webnovel.Errorf(webnovel.ENOTFOUND, "novel not found")
	}
	if err != nil {
		return nil, err
	}

	if novel.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if novel.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &novel, nil
}
