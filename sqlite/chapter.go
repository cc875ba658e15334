package sqlite

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webnovel"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ webnovel.ChapterService = (*ChapterService)(nil)

// ChapterService implements webnovel.ChapterService using SQLite.
type ChapterService struct {
	db *DB
}

// NewChapterService creates a new ChapterService.
func NewChapterService(db *DB) *ChapterService {
	return &ChapterService{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

// InsertChapters stores a batch in a single transaction. Positions already
// stored for the novel are left untouched, and so are the ID, ContentHash
// and CreatedAt of the chapters that were skipped.
func (s *ChapterService) InsertChapters(ctx context.Context, novelID string, chapters []*webnovel.Chapter) error {
	if len(chapters) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chapters (id, novel_id, title, content, content_hash, position, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (novel_id, position) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, ch := range chapters {
		ch.NovelID = novelID
		if err := ch.Validate(); err != nil {
			return err
		}
		id := uuid.New().String()
		hash := hashContent(ch.Content)

		res, err := stmt.ExecContext(ctx, id, ch.NovelID, ch.Title, ch.Content, hash,
			ch.Position, ch.SourceURL, now.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert chapter %d: %w", ch.Position, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("insert chapter %d: %w", ch.Position, err)
		} else if n == 1 {
			ch.ID, ch.ContentHash, ch.CreatedAt = id, hash, now
		}
	}

	return tx.Commit()
}

// CountChapters returns the number of stored chapters of a novel.
func (s *ChapterService) CountChapters(ctx context.Context, novelID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chapters WHERE novel_id = ?", novelID).Scan(&n)
	return n, err
}

// FindChapters retrieves chapters matching the filter ordered by position.
func (s *ChapterService) FindChapters(ctx context.Context, filter webnovel.ChapterFilter) ([]*webnovel.Chapter, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, novel_id, title, content, content_hash, position, source_url, created_at FROM chapters WHERE 1=1")

	if filter.NovelID != nil {
		query.WriteString(" AND novel_id = ?")
		args = append(args, *filter.NovelID)
	}
	if filter.Position != nil {
		query.WriteString(" AND position = ?")
		args = append(args, *filter.Position)
	}

	query.WriteString(" ORDER BY position ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []*webnovel.Chapter
	for rows.Next() {
		var ch webnovel.Chapter
		var createdAt string
		if err := rows.Scan(&ch.ID, &ch.NovelID, &ch.Title, &ch.Content, &ch.ContentHash,
			&ch.Position, &ch.SourceURL, &createdAt); err != nil {
			return nil, err
		}
		if ch.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		chapters = append(chapters, &ch)
	}
	return chapters, rows.Err()
}
