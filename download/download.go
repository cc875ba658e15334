// Package download orchestrates fetching a novel's index, extracting its
// chapter list and downloading every chapter into storage.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/fwojciec/webnovel"
	"golang.org/x/sync/errgroup"
)

// Defaults applied to zero-valued Downloader fields.
const (
	DefaultConcurrency  = 10
	DefaultBatchSize    = 50
	DefaultStaggerDelay = 50 * time.Millisecond
	DefaultPollInterval = 100 * time.Millisecond
)

// Downloader drives a Job through fetching, extraction, normalization and
// ordered persistence.
type Downloader struct {
	Fetcher     webnovel.Fetcher
	Extractor   webnovel.Extractor
	Normalizer  webnovel.Normalizer
	Novels      webnovel.NovelService
	Chapters    webnovel.ChapterService
	RateLimiter webnovel.RateLimiter
	Logger      *slog.Logger

	Concurrency int
	BatchSize   int

	// StaggerDelay is multiplied by a worker's slot number and waited
	// before each of its fetches. Negative disables staggering.
	StaggerDelay time.Duration
	PollInterval time.Duration

	// RetryDelays lists the waits before each retry of a failed chapter
	// fetch. Empty means a single attempt.
	RetryDelays []time.Duration
}

// Index is the parsed content of a novel's index page.
type Index struct {
	URL      string
	Metadata webnovel.NovelMetadata
	Chapters []webnovel.ChapterReference
}

// Result holds the outcome of a Run.
type Result struct {
	// Novel is the refreshed novel record, nil if none was created.
	Novel *webnovel.Novel

	// Total is the number of chapters in the list.
	Total int

	// Persisted is the number of chapters stored by this run.
	Persisted int

	// Failed is the number of stored chapters holding a failure placeholder.
	Failed int
}

// Progress reports one completed chapter.
type Progress struct {
	Completed int
	Total     int
	Title     string
}

// ProgressFunc is a callback for reporting download progress. It is only
// ever called from one goroutine at a time.
type ProgressFunc func(Progress)

// unit is the outcome of downloading one chapter.
type unit struct {
	ordinal int
	chapter *webnovel.Chapter
	failed  bool

	// dropped units were interrupted by context cancellation and must not
	// be persisted.
	dropped bool
}

func (d *Downloader) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

func (d *Downloader) normalize(text string) string {
	if d.Normalizer == nil {
		return text
	}
	return d.Normalizer.Clean(text)
}

// FetchIndex fetches and parses a novel's index page.
// Returns EINVALID for a bad URL or incomplete rule, ENETWORK when the page
// cannot be fetched and EPARSE when it lists no chapters.
func (d *Downloader) FetchIndex(ctx context.Context, rawURL string, rule *webnovel.Rule) (*Index, error) {
	u, err := webnovel.ParseSourceURL(rawURL)
	if err != nil {
		return nil, err
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	html, err := d.fetchIndexPage(ctx, u.String())
	if err != nil {
		return nil, err
	}
	return d.parseIndex(html, u.String(), rule)
}

func (d *Downloader) fetchIndexPage(ctx context.Context, pageURL string) (string, error) {
	d.logger().Info("fetching index", "url", pageURL)
	html, err := d.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		if ctx.Err() != nil {
			return "", webnovel.Canceled("fetching index %s canceled", pageURL)
		}
		if webnovel.ErrorCode(err) == webnovel.EINTERNAL {
			return "", webnovel.Errorf(webnovel.ENETWORK, "fetching index %s: %v", pageURL, err)
		}
		return "", err
	}
	return html, nil
}

func (d *Downloader) parseIndex(html, pageURL string, rule *webnovel.Rule) (*Index, error) {
	index := &Index{
		URL:      pageURL,
		Metadata: d.Extractor.ExtractMetadata(html, rule),
		Chapters: d.Extractor.ExtractChapterList(html, pageURL, rule),
	}
	if len(index.Chapters) == 0 {
		return nil, webnovel.Errorf(webnovel.EPARSE, "no chapters found on %s", pageURL)
	}
	d.logger().Info("index parsed", "url", pageURL, "title", index.Metadata.Title, "chapters", len(index.Chapters))
	return index, nil
}

// Run downloads the job's chapters from its offset onward. Chapters are
// persisted in ordinal order in batches; stored ordinals never have gaps.
//
// When the job is cancelled, or ctx is done, chapters in flight finish and
// the contiguous prefix is stored. Run then returns the result together
// with an ENETWORK error for which webnovel.IsCanceled reports true.
func (d *Downloader) Run(ctx context.Context, job *Job, progress ProgressFunc) (*Result, error) {
	log := d.logger()

	u, err := webnovel.ParseSourceURL(job.SourceURL)
	if err != nil {
		return nil, d.fail(job, err)
	}
	if err := job.Rule.Validate(); err != nil {
		return nil, d.fail(job, err)
	}
	sourceURL := u.String()

	index := job.Index
	if index == nil {
		job.setState(StateFetchingIndex)
		html, err := d.fetchIndexPage(ctx, sourceURL)
		if err != nil {
			if ctx.Err() != nil {
				return d.cancelled(job, &Result{})
			}
			return nil, d.fail(job, err)
		}
		if job.Cancelled() {
			return d.cancelled(job, &Result{})
		}

		job.setState(StateExtractingList)
		if index, err = d.parseIndex(html, sourceURL, job.Rule); err != nil {
			return nil, d.fail(job, err)
		}
	}
	if len(index.Chapters) == 0 {
		return nil, d.fail(job, webnovel.Errorf(webnovel.EPARSE, "no chapters found on %s", sourceURL))
	}

	store := context.WithoutCancel(ctx)
	novel, err := d.prepareNovel(store, job, sourceURL, index)
	if err != nil {
		return nil, d.fail(job, err)
	}

	total := len(index.Chapters)
	offset := min(max(job.Offset, 0), total)
	job.total.Store(int64(total))
	job.completed.Store(int64(offset))
	job.setState(StateDownloading)
	log.Info("downloading", "novel", novel.ID, "from", offset, "total", total)

	persisted, failed, storeErr := d.download(ctx, job, novel.ID, index.Chapters, offset, progress)
	result := &Result{Total: total, Persisted: persisted - offset, Failed: failed}

	if storeErr != nil {
		result.Novel = novel
		return result, d.fail(job, storeErr)
	}

	if err := d.Novels.UpdateTotalChapters(store, novel.ID, persisted); err != nil {
		result.Novel = novel
		return result, d.fail(job, databaseError(err, "updating chapter total"))
	}
	if result.Novel, err = d.Novels.FindNovelByID(store, novel.ID); err != nil {
		return result, d.fail(job, databaseError(err, "reloading novel"))
	}

	if persisted < total && (job.Cancelled() || ctx.Err() != nil) {
		log.Info("download cancelled", "novel", novel.ID, "persisted", persisted, "total", total)
		return d.cancelled(job, result)
	}

	job.setState(StateCompleted)
	log.Info("download completed", "novel", novel.ID, "persisted", persisted, "failed", failed)
	return result, nil
}

func (d *Downloader) prepareNovel(ctx context.Context, job *Job, sourceURL string, index *Index) (*webnovel.Novel, error) {
	if job.NovelID != "" {
		novel, err := d.Novels.FindNovelByID(ctx, job.NovelID)
		if err != nil {
			return nil, databaseError(err, "loading novel")
		}
		return novel, nil
	}

	title := index.Metadata.Title
	if title == "" {
		title = webnovel.DefaultNovelTitle
	}
	novel := &webnovel.Novel{
		Title:         title,
		Author:        index.Metadata.Author,
		Description:   index.Metadata.Description,
		SourceURL:     sourceURL,
		TotalChapters: len(index.Chapters),
	}
	if err := d.Novels.CreateNovel(ctx, novel); err != nil {
		return nil, databaseError(err, "creating novel")
	}
	job.NovelID = novel.ID
	job.Offset = 0
	return novel, nil
}

// download runs the worker pool and the collector. It returns the number
// of chapters stored for the novel (offset included), how many of the
// newly stored ones are failure placeholders, and any storage error.
func (d *Downloader) download(ctx context.Context, job *Job, novelID string, refs []webnovel.ChapterReference, offset int, progress ProgressFunc) (int, int, error) {
	log := d.logger()
	total := len(refs)

	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	batchSize := d.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	stagger := d.StaggerDelay
	if stagger == 0 {
		stagger = DefaultStaggerDelay
	}
	poll := d.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	var halted atomic.Bool
	stopped := func() bool {
		return job.Cancelled() || halted.Load() || ctx.Err() != nil
	}

	work := make(chan int)
	results := make(chan unit, concurrency)

	var g errgroup.Group
	g.Go(func() error {
		defer close(work)
		for ordinal := offset; ordinal < total; ordinal++ {
			if stopped() {
				return nil
			}
			select {
			case work <- ordinal:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})
	for slot := range concurrency {
		g.Go(func() error {
			for ordinal := range work {
				if stopped() {
					continue
				}
				results <- d.downloadChapter(ctx, job.Rule, slot, stagger, ordinal, refs[ordinal])
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	store := context.WithoutCancel(ctx)
	arena := make([]*webnovel.Chapter, total-offset)
	next := offset   // first ordinal not yet stored
	filled := offset // first ordinal not yet received
	var (
		failed   int
		storeErr error
	)

	flush := func(end int) {
		if storeErr != nil || end <= next {
			return
		}
		batch := arena[next-offset : end-offset]
		if err := d.Chapters.InsertChapters(store, novelID, batch); err != nil {
			storeErr = databaseError(err, "storing chapters")
			halted.Store(true)
			log.Error("storing chapters failed", "novel", novelID, "from", next, "count", len(batch), "error", err)
			return
		}
		for _, ch := range batch {
			if webnovel.IsFailurePlaceholder(ch.Content) {
				failed++
			}
		}
		log.Debug("stored chapters", "novel", novelID, "from", next, "count", len(batch))
		for i := next; i < end; i++ {
			arena[i-offset] = nil
		}
		next = end
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	noticed := false

	for open := true; open; {
		select {
		case u, ok := <-results:
			if !ok {
				open = false
				break
			}
			if u.dropped {
				continue
			}
			arena[u.ordinal-offset] = u.chapter
			for filled < total && arena[filled-offset] != nil {
				filled++
			}
			if u.failed {
				log.Warn("chapter failed", "ordinal", u.ordinal, "title", u.chapter.Title, "content", u.chapter.Content)
			}
			completed := job.completed.Add(1)
			if progress != nil {
				progress(Progress{Completed: int(completed), Total: total, Title: u.chapter.Title})
			}
			for filled-next >= batchSize {
				flush(next + batchSize)
				if storeErr != nil {
					break
				}
			}
		case <-ticker.C:
			if ctx.Err() != nil {
				job.Cancel()
			}
			if job.Cancelled() && !noticed {
				noticed = true
				log.Info("cancellation requested, waiting for chapters in flight", "novel", novelID)
			}
		}
	}

	// Anything past the first gap is discarded.
	flush(filled)
	return next, failed, storeErr
}

// downloadChapter fetches, extracts and normalizes one chapter. Any failure
// other than cancellation yields a placeholder chapter.
func (d *Downloader) downloadChapter(ctx context.Context, rule *webnovel.Rule, slot int, stagger time.Duration, ordinal int, ref webnovel.ChapterReference) unit {
	u := unit{ordinal: ordinal}
	chapter := &webnovel.Chapter{
		Title:     ref.Title,
		Position:  ordinal,
		SourceURL: ref.URL,
	}
	u.chapter = chapter

	if wait := time.Duration(slot) * stagger; wait > 0 {
		select {
		case <-ctx.Done():
			u.dropped = true
			return u
		case <-time.After(wait):
		}
	}

	if d.RateLimiter != nil {
		if err := d.RateLimiter.Wait(ctx, hostOf(ref.URL)); err != nil {
			if ctx.Err() != nil {
				u.dropped = true
				return u
			}
			chapter.Content = webnovel.FailurePlaceholder(err)
			u.failed = true
			return u
		}
	}

	logf := func(format string, args ...any) {
		d.logger().Debug(fmt.Sprintf(format, args...))
	}
	html, err := FetchWithRetryDelays(ctx, ref.URL, d.Fetcher.Fetch, logf, d.RetryDelays)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			u.dropped = true
			return u
		}
		chapter.Content = webnovel.FailurePlaceholder(err)
		u.failed = true
		return u
	}

	content := d.normalize(d.Extractor.ExtractChapterContent(html, rule))
	if content == "" {
		chapter.Content = webnovel.FailurePlaceholder(webnovel.Errorf(webnovel.EPARSE, "no content found"))
		u.failed = true
		return u
	}
	chapter.Content = content
	return u
}

func (d *Downloader) fail(job *Job, err error) error {
	job.setState(StateFailed)
	return err
}

func (d *Downloader) cancelled(job *Job, result *Result) (*Result, error) {
	job.setState(StateCancelled)
	return result, webnovel.Canceled("download canceled")
}

// databaseError wraps a storage failure as EDATABASE, keeping application
// errors such as ENOTFOUND as they are.
func databaseError(err error, action string) error {
	if webnovel.ErrorCode(err) != webnovel.EINTERNAL {
		return err
	}
	return webnovel.Errorf(webnovel.EDATABASE, "%s: %v", action, err)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
