package download_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/webnovel"
	"github.com/fwojciec/webnovel/download"
	"github.com/fwojciec/webnovel/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(n int) []webnovel.ChapterReference {
	out := make([]webnovel.ChapterReference, n)
	for i := range out {
		out[i] = webnovel.ChapterReference{Title: "Chapter", URL: chapterURL(i), Index: i}
	}
	return out
}

func TestAdvisor_Check(t *testing.T) {
	t.Parallel()

	t.Run("unknown source yields a fresh decision", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		advisor := &download.Advisor{Novels: store.novelService(), Chapters: store.chapterService()}

		decision, err := advisor.Check(context.Background(), indexURL, refs(5))

		require.NoError(t, err)
		assert.False(t, decision.Exists())
		assert.Equal(t, 5, decision.NewTotal)
		assert.Zero(t, decision.Downloaded)
	})

	t.Run("partial download can be resumed", func(t *testing.T) {
		t.Parallel()

		f := newFixture(10)
		first, err := f.downloader.Run(context.Background(), download.NewJob(indexURL, testRule()), nil)
		require.NoError(t, err)
		f.store.mu.Lock()
		for p := 6; p < 10; p++ {
			delete(f.store.chapters[first.Novel.ID], p)
		}
		f.store.mu.Unlock()
		advisor := &download.Advisor{Novels: f.store.novelService(), Chapters: f.store.chapterService()}

		decision, err := advisor.Check(context.Background(), "example.com/book/", refs(10))

		require.NoError(t, err)
		assert.True(t, decision.Exists())
		assert.Equal(t, first.Novel.ID, decision.NovelID)
		assert.Equal(t, "Test Novel", decision.Title)
		assert.Equal(t, 6, decision.Downloaded)
		assert.False(t, decision.AlreadyComplete())
		assert.False(t, decision.Diverged)
	})

	t.Run("complete download is reported as such", func(t *testing.T) {
		t.Parallel()

		f := newFixture(4)
		_, err := f.downloader.Run(context.Background(), download.NewJob(indexURL, testRule()), nil)
		require.NoError(t, err)
		advisor := &download.Advisor{Novels: f.store.novelService(), Chapters: f.store.chapterService()}

		decision, err := advisor.Check(context.Background(), indexURL, refs(4))

		require.NoError(t, err)
		assert.True(t, decision.AlreadyComplete())
	})

	t.Run("shrunken list is flagged as diverged", func(t *testing.T) {
		t.Parallel()

		f := newFixture(6)
		_, err := f.downloader.Run(context.Background(), download.NewJob(indexURL, testRule()), nil)
		require.NoError(t, err)
		advisor := &download.Advisor{Novels: f.store.novelService(), Chapters: f.store.chapterService()}

		decision, err := advisor.Check(context.Background(), indexURL, refs(3))

		require.NoError(t, err)
		assert.True(t, decision.Diverged)
		assert.Equal(t, 6, decision.Downloaded)
	})

	t.Run("changed chapter url is flagged as diverged", func(t *testing.T) {
		t.Parallel()

		f := newFixture(3)
		_, err := f.downloader.Run(context.Background(), download.NewJob(indexURL, testRule()), nil)
		require.NoError(t, err)
		advisor := &download.Advisor{Novels: f.store.novelService(), Chapters: f.store.chapterService()}
		fresh := refs(5)
		fresh[2].URL = "https://example.com/book/moved.html"

		decision, err := advisor.Check(context.Background(), indexURL, fresh)

		require.NoError(t, err)
		assert.True(t, decision.Diverged)
		assert.Equal(t, 3, decision.Downloaded)
	})

	t.Run("storage failure is a database error", func(t *testing.T) {
		t.Parallel()

		advisor := &download.Advisor{
			Novels: &mock.NovelService{
				FindNovelBySourceURLFn: func(ctx context.Context, sourceURL string) (*webnovel.Novel, error) {
					return nil, errors.New("database is locked")
				},
			},
		}

		_, err := advisor.Check(context.Background(), indexURL, refs(1))

		assert.Equal(t, webnovel.EDATABASE, webnovel.ErrorCode(err))
	})

	t.Run("invalid url is rejected", func(t *testing.T) {
		t.Parallel()

		advisor := &download.Advisor{}

		_, err := advisor.Check(context.Background(), "mailto:someone@example.com", refs(1))

		assert.Equal(t, webnovel.EINVALID, webnovel.ErrorCode(err))
	})
}
