// Package fs exports stored novels to the local filesystem.
package fs

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/webnovel"
)

// DefaultPageSize is the number of chapters read from storage at a time.
const DefaultPageSize = 100

var unsafeNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

// FileName returns a filesystem-safe ".txt" name for a novel.
func FileName(novel *webnovel.Novel) string {
	name := strings.TrimSpace(unsafeNameChars.ReplaceAllString(novel.Title, "_"))
	if name == "" {
		name = webnovel.DefaultNovelTitle
	}
	return name + ".txt"
}

// FormatHeader returns the block written above the first chapter.
func FormatHeader(novel *webnovel.Novel) string {
	var b strings.Builder
	b.WriteString(novel.Title)
	b.WriteString("\n")
	if novel.Author != "" {
		b.WriteString("Author: ")
		b.WriteString(novel.Author)
		b.WriteString("\n")
	}
	b.WriteString("Source: ")
	b.WriteString(novel.SourceURL)
	b.WriteString("\n")
	if novel.Description != "" {
		b.WriteString("\n")
		b.WriteString(novel.Description)
		b.WriteString("\n")
	}
	return b.String()
}

// Writer exports a novel's chapters as one plain-text file.
type Writer struct {
	chapters webnovel.ChapterService
	pageSize int
}

// NewWriter creates a new Writer reading chapters from chapters.
func NewWriter(chapters webnovel.ChapterService) *Writer {
	return &Writer{chapters: chapters, pageSize: DefaultPageSize}
}

// Export writes novel to path and returns the number of chapters written.
// If path is an existing directory the file is named by FileName. The text
// is written to a temporary file first and renamed into place, so an
// existing export is only replaced by a complete one.
func (w *Writer) Export(ctx context.Context, novel *webnovel.Novel, path string) (string, int, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName(novel))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := w.write(ctx, tmp, novel)
	if err != nil {
		tmp.Close()
		return "", 0, err
	}
	if err := tmp.Close(); err != nil {
		return "", 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, err
	}
	return path, n, nil
}

func (w *Writer) write(ctx context.Context, f *os.File, novel *webnovel.Novel) (int, error) {
	bw := bufio.NewWriter(f)
	if _, err := bw.WriteString(FormatHeader(novel)); err != nil {
		return 0, err
	}

	var n int
	for offset := 0; ; offset += w.pageSize {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		page, err := w.chapters.FindChapters(ctx, webnovel.ChapterFilter{
			NovelID: &novel.ID,
			Offset:  offset,
			Limit:   w.pageSize,
		})
		if err != nil {
			return n, err
		}
		for _, ch := range page {
			bw.WriteString("\n\n")
			bw.WriteString(ch.Title)
			bw.WriteString("\n\n")
			bw.WriteString(ch.Content)
			bw.WriteString("\n")
			n++
		}
		if len(page) < w.pageSize {
			break
		}
	}
	return n, bw.Flush()
}
