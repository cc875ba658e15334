package download_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/webnovel"
	"github.com/fwojciec/webnovel/download"
	"github.com/fwojciec/webnovel/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloader_TestRule(t *testing.T) {
	t.Parallel()

	t.Run("reports metadata, count and sample", func(t *testing.T) {
		t.Parallel()

		f := newFixture(12)

		result := f.downloader.TestRule(context.Background(), indexURL, testRule())

		require.True(t, result.OK(), result.Error)
		assert.Equal(t, "Test Novel", result.Title)
		assert.Equal(t, "Author", result.Author)
		assert.Equal(t, 12, result.ChapterCount)
		assert.Equal(t, "body of chapter 0", result.Sample)
		assert.Empty(t, f.store.positions("novel-1"), "nothing is stored")
	})

	t.Run("long sample is truncated", func(t *testing.T) {
		t.Parallel()

		f := newFixture(1)
		f.downloader.Extractor.(*mock.Extractor).ExtractChapterContentFn = func(html string, rule *webnovel.Rule) string {
			return strings.Repeat("字", 300)
		}

		result := f.downloader.TestRule(context.Background(), indexURL, testRule())

		assert.Equal(t, strings.Repeat("字", 200)+"...", result.Sample)
	})

	t.Run("failed first chapter yields placeholder sample", func(t *testing.T) {
		t.Parallel()

		f := newFixture(2)
		f.fetchHook = func(ctx context.Context, ordinal int) error {
			return webnovel.Errorf(webnovel.ENETWORK, "HTTP 404")
		}

		result := f.downloader.TestRule(context.Background(), indexURL, testRule())

		assert.True(t, result.OK())
		assert.Equal(t, 2, result.ChapterCount)
		assert.Equal(t, "[download failed: HTTP 404]", result.Sample)
	})

	t.Run("no chapters is not an error", func(t *testing.T) {
		t.Parallel()

		f := newFixture(0)

		result := f.downloader.TestRule(context.Background(), indexURL, testRule())

		assert.True(t, result.OK())
		assert.Zero(t, result.ChapterCount)
		assert.Empty(t, result.Sample)
	})

	t.Run("incomplete rule names missing fields", func(t *testing.T) {
		t.Parallel()

		f := newFixture(1)

		result := f.downloader.TestRule(context.Background(), indexURL, &webnovel.Rule{Domain: "example.com", ChapterListSelector: "a"})

		assert.False(t, result.OK())
		assert.Equal(t, "rule is incomplete (contentSelector)", result.Error)
		assert.Zero(t, f.fetches.Load())
	})

	t.Run("unreachable index is reported", func(t *testing.T) {
		t.Parallel()

		f := newFixture(1)
		f.downloader.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "", webnovel.Errorf(webnovel.ENETWORK, "HTTP 500 for %s", url)
			},
		}

		result := f.downloader.TestRule(context.Background(), indexURL, testRule())

		assert.Equal(t, "HTTP 500 for "+indexURL, result.Error)
	})
}

func TestState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "downloading", download.StateDownloading.String())
	assert.True(t, download.StateCancelled.Terminal())
	assert.False(t, download.StateExtractingList.Terminal())
}
