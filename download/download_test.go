package download_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/webnovel"
	"github.com/fwojciec/webnovel/download"
	"github.com/fwojciec/webnovel/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexURL = "https://example.com/book/"

func chapterURL(i int) string {
	return fmt.Sprintf("https://example.com/book/%d.html", i)
}

func testRule() *webnovel.Rule {
	return &webnovel.Rule{
		Name:                "example",
		Domain:              "example.com",
		ChapterListSelector: "#list a",
		ContentSelector:     "#content",
	}
}

// memStore is an in-memory novel and chapter store with insert-or-ignore
// semantics keyed by position.
type memStore struct {
	mu        sync.Mutex
	seq       int
	novels    map[string]*webnovel.Novel
	chapters  map[string]map[int]*webnovel.Chapter
	batches   [][]int
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{
		novels:   make(map[string]*webnovel.Novel),
		chapters: make(map[string]map[int]*webnovel.Chapter),
	}
}

func (s *memStore) novelService() *mock.NovelService {
	return &mock.NovelService{
		CreateNovelFn: func(_ context.Context, n *webnovel.Novel) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.seq++
			n.ID = fmt.Sprintf("novel-%d", s.seq)
			c := *n
			s.novels[n.ID] = &c
			return nil
		},
		FindNovelByIDFn: func(_ context.Context, id string) (*webnovel.Novel, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			n, ok := s.novels[id]
			if !ok {
				return nil, webnovel.Errorf(webnovel.ENOTFOUND, "novel not found")
			}
			c := *n
			return &c, nil
		},
		FindNovelBySourceURLFn: func(_ context.Context, sourceURL string) (*webnovel.Novel, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var found *webnovel.Novel
			for i := 1; i <= s.seq; i++ {
				if n, ok := s.novels[fmt.Sprintf("novel-%d", i)]; ok && n.SourceURL == sourceURL {
					found = n
				}
			}
			if found == nil {
				return nil, webnovel.Errorf(webnovel.ENOTFOUND, "novel not found")
			}
			c := *found
			return &c, nil
		},
		UpdateTotalChaptersFn: func(_ context.Context, id string, total int) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			n, ok := s.novels[id]
			if !ok {
				return webnovel.Errorf(webnovel.ENOTFOUND, "novel not found")
			}
			n.TotalChapters = total
			return nil
		},
	}
}

func (s *memStore) chapterService() *mock.ChapterService {
	return &mock.ChapterService{
		InsertChaptersFn: func(_ context.Context, novelID string, chapters []*webnovel.Chapter) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.insertErr != nil {
				return s.insertErr
			}
			if s.chapters[novelID] == nil {
				s.chapters[novelID] = make(map[int]*webnovel.Chapter)
			}
			var positions []int
			for _, ch := range chapters {
				positions = append(positions, ch.Position)
				if _, ok := s.chapters[novelID][ch.Position]; ok {
					continue
				}
				c := *ch
				c.NovelID = novelID
				s.chapters[novelID][ch.Position] = &c
			}
			s.batches = append(s.batches, positions)
			return nil
		},
		CountChaptersFn: func(_ context.Context, novelID string) (int, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return len(s.chapters[novelID]), nil
		},
		FindChaptersFn: func(_ context.Context, filter webnovel.ChapterFilter) ([]*webnovel.Chapter, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []*webnovel.Chapter
			for _, ch := range s.chapters[*filter.NovelID] {
				if filter.Position == nil || *filter.Position == ch.Position {
					c := *ch
					out = append(out, &c)
				}
			}
			sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
			return out, nil
		},
	}
}

// positions returns the stored positions of a novel in ascending order.
func (s *memStore) positions(novelID string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for p := range s.chapters[novelID] {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func (s *memStore) content(novelID string, position int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapters[novelID][position].Content
}

// fixture wires a Downloader over a fake site with n chapters.
type fixture struct {
	store      *memStore
	downloader *download.Downloader
	fetches    atomic.Int32

	// fetchHook, if set, runs before every chapter fetch.
	fetchHook func(ctx context.Context, ordinal int) error
	title     string
}

func newFixture(n int) *fixture {
	f := &fixture{store: newMemStore(), title: "Test Novel"}
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			f.fetches.Add(1)
			if url == indexURL {
				return "index", nil
			}
			var ordinal int
			if _, err := fmt.Sscanf(strings.TrimPrefix(url, indexURL), "%d.html", &ordinal); err != nil {
				return "", webnovel.Errorf(webnovel.ENETWORK, "HTTP 404 for %s", url)
			}
			if f.fetchHook != nil {
				if err := f.fetchHook(ctx, ordinal); err != nil {
					return "", err
				}
			}
			return fmt.Sprintf("  body of chapter %d  ", ordinal), nil
		},
	}
	extractor := &mock.Extractor{
		ExtractMetadataFn: func(html string, rule *webnovel.Rule) webnovel.NovelMetadata {
			return webnovel.NovelMetadata{Title: f.title, Author: "Author"}
		},
		ExtractChapterListFn: func(html, pageURL string, rule *webnovel.Rule) []webnovel.ChapterReference {
			refs := make([]webnovel.ChapterReference, n)
			for i := range refs {
				refs[i] = webnovel.ChapterReference{Title: fmt.Sprintf("Chapter %d", i+1), URL: chapterURL(i), Index: i}
			}
			return refs
		},
		ExtractChapterContentFn: func(html string, rule *webnovel.Rule) string {
			return html
		},
	}
	f.downloader = &download.Downloader{
		Fetcher:      fetcher,
		Extractor:    extractor,
		Normalizer:   webnovel.NormalizerFunc(strings.TrimSpace),
		Novels:       f.store.novelService(),
		Chapters:     f.store.chapterService(),
		Concurrency:  4,
		BatchSize:    3,
		StaggerDelay: -1,
		PollInterval: 5 * time.Millisecond,
	}
	return f
}

func assertContiguous(t *testing.T, positions []int) {
	t.Helper()
	for i, p := range positions {
		require.Equal(t, i, p, "stored positions must be 0..n-1 without gaps")
	}
}

func TestDownloader_Run(t *testing.T) {
	t.Parallel()

	t.Run("downloads every chapter in order", func(t *testing.T) {
		t.Parallel()

		f := newFixture(10)
		f.fetchHook = func(ctx context.Context, ordinal int) error {
			// Finish out of order.
			time.Sleep(time.Duration((10-ordinal)%4) * time.Millisecond)
			return nil
		}
		job := download.NewJob("example.com/book/", testRule())

		var events []download.Progress
		result, err := f.downloader.Run(context.Background(), job, func(p download.Progress) {
			events = append(events, p)
		})

		require.NoError(t, err)
		assert.Equal(t, download.StateCompleted, job.State())
		assert.Equal(t, 10, result.Persisted)
		assert.Equal(t, 10, result.Total)
		assert.Zero(t, result.Failed)
		assert.Equal(t, "Test Novel", result.Novel.Title)
		assert.Equal(t, 10, result.Novel.TotalChapters)
		assert.Equal(t, indexURL, result.Novel.SourceURL)

		positions := f.store.positions(result.Novel.ID)
		require.Len(t, positions, 10)
		assertContiguous(t, positions)
		assert.Equal(t, "body of chapter 7", f.store.content(result.Novel.ID, 7))

		require.Len(t, events, 10)
		for i, e := range events {
			assert.Equal(t, i+1, e.Completed)
			assert.Equal(t, 10, e.Total)
		}

		for i, batch := range f.store.batches {
			for j := 1; j < len(batch); j++ {
				assert.Equal(t, batch[j-1]+1, batch[j], "batch %d must be contiguous", i)
			}
		}
	})

	t.Run("defaults title when metadata has none", func(t *testing.T) {
		t.Parallel()

		f := newFixture(2)
		f.title = ""

		result, err := f.downloader.Run(context.Background(), download.NewJob(indexURL, testRule()), nil)

		require.NoError(t, err)
		assert.Equal(t, webnovel.DefaultNovelTitle, result.Novel.Title)
	})

	t.Run("failed chapter is stored as placeholder", func(t *testing.T) {
		t.Parallel()

		f := newFixture(5)
		f.fetchHook = func(ctx context.Context, ordinal int) error {
			if ordinal == 2 {
				return webnovel.Errorf(webnovel.ENETWORK, "HTTP 503")
			}
			return nil
		}

		result, err := f.downloader.Run(context.Background(), download.NewJob(indexURL, testRule()), nil)

		require.NoError(t, err)
		assert.Equal(t, 5, result.Persisted)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, "[download failed: HTTP 503]", f.store.content(result.Novel.ID, 2))
		assert.Equal(t, "body of chapter 3", f.store.content(result.Novel.ID, 3))
	})

	t.Run("retries failed chapter fetches", func(t *testing.T) {
		t.Parallel()

		f := newFixture(3)
		var failures atomic.Int32
		f.fetchHook = func(ctx context.Context, ordinal int) error {
			if ordinal == 1 && failures.Add(1) == 1 {
				return errors.New("connection reset")
			}
			return nil
		}
		f.downloader.RetryDelays = []time.Duration{0}

		result, err := f.downloader.Run(context.Background(), download.NewJob(indexURL, testRule()), nil)

		require.NoError(t, err)
		assert.Zero(t, result.Failed)
		assert.Equal(t, "body of chapter 1", f.store.content(result.Novel.ID, 1))
	})

	t.Run("zero chapters is a parse error", func(t *testing.T) {
		t.Parallel()

		f := newFixture(0)
		job := download.NewJob(indexURL, testRule())

		_, err := f.downloader.Run(context.Background(), job, nil)

		require.Error(t, err)
		assert.Equal(t, webnovel.EPARSE, webnovel.ErrorCode(err))
		assert.Equal(t, download.StateFailed, job.State())
	})

	t.Run("incomplete rule fails before any fetch", func(t *testing.T) {
		t.Parallel()

		f := newFixture(3)
		job := download.NewJob(indexURL, &webnovel.Rule{Domain: "example.com"})

		_, err := f.downloader.Run(context.Background(), job, nil)

		require.Error(t, err)
		assert.Equal(t, webnovel.EINVALID, webnovel.ErrorCode(err))
		assert.Equal(t, []string{"chapterListSelector", "contentSelector"}, webnovel.ErrorFields(err))
		assert.Zero(t, f.fetches.Load())
		assert.Equal(t, download.StateFailed, job.State())
	})

	t.Run("invalid url fails before any fetch", func(t *testing.T) {
		t.Parallel()

		f := newFixture(3)

		_, err := f.downloader.Run(context.Background(), download.NewJob("ftp://example.com/", testRule()), nil)

		assert.Equal(t, webnovel.EINVALID, webnovel.ErrorCode(err))
		assert.Zero(t, f.fetches.Load())
	})

	t.Run("index fetch failure is a network error", func(t *testing.T) {
		t.Parallel()

		f := newFixture(3)
		f.downloader.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "", errors.New("dial tcp: no such host")
			},
		}
		job := download.NewJob(indexURL, testRule())

		_, err := f.downloader.Run(context.Background(), job, nil)

		assert.Equal(t, webnovel.ENETWORK, webnovel.ErrorCode(err))
		assert.Equal(t, download.StateFailed, job.State())
	})

	t.Run("resumes from offset", func(t *testing.T) {
		t.Parallel()

		f := newFixture(8)
		first, err := f.downloader.Run(context.Background(), download.NewJob(indexURL, testRule()), nil)
		require.NoError(t, err)

		// Forget the tail to simulate an interrupted run.
		f.store.mu.Lock()
		for p := 5; p < 8; p++ {
			delete(f.store.chapters[first.Novel.ID], p)
		}
		f.store.mu.Unlock()

		var fetched []int
		var mu sync.Mutex
		f.fetchHook = func(ctx context.Context, ordinal int) error {
			mu.Lock()
			fetched = append(fetched, ordinal)
			mu.Unlock()
			return nil
		}
		job := download.NewJob(indexURL, testRule())
		job.NovelID = first.Novel.ID
		job.Offset = 5

		var events []download.Progress
		result, err := f.downloader.Run(context.Background(), job, func(p download.Progress) {
			events = append(events, p)
		})

		require.NoError(t, err)
		sort.Ints(fetched)
		assert.Equal(t, []int{5, 6, 7}, fetched)
		assert.Equal(t, 3, result.Persisted)
		assert.Equal(t, first.Novel.ID, result.Novel.ID)
		assertContiguous(t, f.store.positions(first.Novel.ID))
		require.NotEmpty(t, events)
		assert.Equal(t, 6, events[0].Completed)
		assert.Equal(t, 8, events[len(events)-1].Completed)
	})

	t.Run("resuming a complete novel changes nothing", func(t *testing.T) {
		t.Parallel()

		f := newFixture(4)
		first, err := f.downloader.Run(context.Background(), download.NewJob(indexURL, testRule()), nil)
		require.NoError(t, err)
		fetchesBefore := f.fetches.Load()

		job := download.NewJob(indexURL, testRule())
		job.NovelID = first.Novel.ID
		job.Offset = 4
		result, err := f.downloader.Run(context.Background(), job, nil)

		require.NoError(t, err)
		assert.Zero(t, result.Persisted)
		assert.Equal(t, fetchesBefore+1, f.fetches.Load(), "only the index is fetched")
		assert.Equal(t, []int{0, 1, 2, 3}, f.store.positions(first.Novel.ID))
	})

	t.Run("uses prefetched index", func(t *testing.T) {
		t.Parallel()

		f := newFixture(3)
		index, err := f.downloader.FetchIndex(context.Background(), indexURL, testRule())
		require.NoError(t, err)
		fetchesBefore := f.fetches.Load()

		job := download.NewJob(indexURL, testRule())
		job.Index = index
		_, err = f.downloader.Run(context.Background(), job, nil)

		require.NoError(t, err)
		assert.Equal(t, fetchesBefore+3, f.fetches.Load())
	})

	t.Run("storage failure stops the download", func(t *testing.T) {
		t.Parallel()

		f := newFixture(10)
		f.store.insertErr = errors.New("disk I/O error")
		job := download.NewJob(indexURL, testRule())

		_, err := f.downloader.Run(context.Background(), job, nil)

		require.Error(t, err)
		assert.Equal(t, webnovel.EDATABASE, webnovel.ErrorCode(err))
		assert.Equal(t, download.StateFailed, job.State())
	})

	t.Run("reports downloading state while running", func(t *testing.T) {
		t.Parallel()

		f := newFixture(2)
		job := download.NewJob(indexURL, testRule())
		var seen atomic.Bool
		f.fetchHook = func(ctx context.Context, ordinal int) error {
			if job.State() == download.StateDownloading && job.Active() && job.Total() == 2 {
				seen.Store(true)
			}
			return nil
		}

		_, err := f.downloader.Run(context.Background(), job, nil)

		require.NoError(t, err)
		assert.True(t, seen.Load())
		assert.False(t, job.Active())
		assert.Equal(t, 2, job.Completed())
	})
}

func TestDownloader_Run_Cancellation(t *testing.T) {
	t.Parallel()

	t.Run("cancel keeps a gap-free prefix", func(t *testing.T) {
		t.Parallel()

		f := newFixture(40)
		f.downloader.Concurrency = 3
		f.downloader.BatchSize = 2
		job := download.NewJob(indexURL, testRule())

		var last, atCancel int
		var finished atomic.Bool
		result, err := f.downloader.Run(context.Background(), job, func(p download.Progress) {
			assert.False(t, finished.Load(), "progress after Run returned")
			assert.Greater(t, p.Completed, last)
			last = p.Completed
			if p.Completed == 5 {
				atCancel = p.Completed
				job.Cancel()
			}
		})
		finished.Store(true)

		require.Error(t, err)
		assert.True(t, webnovel.IsCanceled(err))
		assert.Equal(t, webnovel.ENETWORK, webnovel.ErrorCode(err))
		assert.Equal(t, download.StateCancelled, job.State())

		positions := f.store.positions(result.Novel.ID)
		assertContiguous(t, positions)
		assert.Less(t, len(positions), 40)
		assert.GreaterOrEqual(t, len(positions), atCancel)
		assert.Equal(t, len(positions), result.Novel.TotalChapters)
		assert.Equal(t, len(positions), result.Persisted)
	})

	t.Run("context cancellation is treated as cancel", func(t *testing.T) {
		t.Parallel()

		f := newFixture(40)
		f.downloader.Concurrency = 2
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		f.fetchHook = func(ctx context.Context, ordinal int) error {
			if ordinal == 6 {
				cancel()
			}
			if ordinal >= 6 {
				<-ctx.Done()
				return ctx.Err()
			}
			return nil
		}
		job := download.NewJob(indexURL, testRule())

		result, err := f.downloader.Run(ctx, job, nil)

		require.Error(t, err)
		assert.True(t, webnovel.IsCanceled(err))
		assert.Equal(t, download.StateCancelled, job.State())
		positions := f.store.positions(result.Novel.ID)
		assertContiguous(t, positions)
		assert.LessOrEqual(t, len(positions), 6)
		assert.Equal(t, len(positions), result.Novel.TotalChapters)
	})

	t.Run("cancel during index fetch stores nothing", func(t *testing.T) {
		t.Parallel()

		f := newFixture(5)
		job := download.NewJob(indexURL, testRule())
		inner := f.downloader.Fetcher
		f.downloader.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				job.Cancel()
				return inner.Fetch(ctx, url)
			},
		}

		result, err := f.downloader.Run(context.Background(), job, nil)

		assert.True(t, webnovel.IsCanceled(err))
		require.NotNil(t, result)
		assert.Nil(t, result.Novel)
		assert.Equal(t, download.StateCancelled, job.State())
	})

	t.Run("canceled index fetch reports a canceled network error", func(t *testing.T) {
		t.Parallel()

		f := newFixture(5)
		ctx, cancel := context.WithCancel(context.Background())
		f.downloader.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				cancel()
				return "", ctx.Err()
			},
		}

		_, err := f.downloader.FetchIndex(ctx, indexURL, testRule())

		require.Error(t, err)
		assert.True(t, webnovel.IsCanceled(err))
		assert.Equal(t, webnovel.ENETWORK, webnovel.ErrorCode(err))
	})
}

func TestJob_Apply(t *testing.T) {
	t.Parallel()

	decision := &webnovel.ResumeDecision{NovelID: "n1", Downloaded: 7, NewTotal: 10}

	t.Run("resume continues prior novel", func(t *testing.T) {
		t.Parallel()

		job := download.NewJob(indexURL, testRule())
		require.NoError(t, job.Apply(decision, webnovel.ActionResume))
		assert.Equal(t, "n1", job.NovelID)
		assert.Equal(t, 7, job.Offset)
	})

	t.Run("restart starts a new novel", func(t *testing.T) {
		t.Parallel()

		job := download.NewJob(indexURL, testRule())
		job.NovelID, job.Offset = "old", 3
		require.NoError(t, job.Apply(decision, webnovel.ActionRestart))
		assert.Empty(t, job.NovelID)
		assert.Zero(t, job.Offset)
	})

	t.Run("cancel starts nothing", func(t *testing.T) {
		t.Parallel()

		job := download.NewJob(indexURL, testRule())
		err := job.Apply(decision, webnovel.ActionCancel)
		assert.True(t, webnovel.IsCanceled(err))
		assert.Equal(t, download.StateCancelled, job.State())
	})

	t.Run("job holds its own rule copy", func(t *testing.T) {
		t.Parallel()

		rule := testRule()
		job := download.NewJob(indexURL, rule)
		rule.ContentSelector = "#changed"
		assert.Equal(t, "#content", job.Rule.ContentSelector)
	})
}
