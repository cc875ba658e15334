package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/webnovel"
	"github.com/fwojciec/webnovel/download"
	"github.com/fwojciec/webnovel/goquery"
	wnhttp "github.com/fwojciec/webnovel/http"
	"github.com/fwojciec/webnovel/readability"
	"github.com/fwojciec/webnovel/resty"
	wnslog "github.com/fwojciec/webnovel/slog"
	"github.com/fwojciec/webnovel/sqlite"
	"github.com/fwojciec/webnovel/trafilatura"
)

func main() {
	ctx, abort := context.WithCancel(context.Background())
	defer abort()

	m := NewMain()

	// The first interrupt stops the running download after the chapters in
	// flight are stored; the second aborts.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt)
	go func() {
		<-signals
		if m.Interrupt() {
			fmt.Fprintln(os.Stderr, "\nStopping after chapters in flight; press Ctrl+C again to abort.")
			<-signals
		}
		abort()
	}()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, webnovel.ErrorMessage(err))
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// job is the download currently running, if any.
	job atomic.Pointer[download.Job]
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Interrupt cancels the running download and reports whether there was one.
func (m *Main) Interrupt() bool {
	job := m.job.Load()
	if job == nil || !job.Active() {
		return false
	}
	job.Cancel()
	return true
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Track:  func(job *download.Job) { m.job.Store(job) },
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webnovel"),
		kong.Description("Download web novels chapter by chapter using per-site selector rules"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webnovel --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set WEBNOVEL_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.DB = m.DB
	deps.Novels = sqlite.NewNovelService(m.DB)
	deps.Chapters = wnslog.NewLoggingChapterService(sqlite.NewChapterService(m.DB), deps.Logger)
	deps.Rules = wnslog.NewLoggingRuleService(sqlite.NewRuleService(m.DB), deps.Logger)
	deps.NewDownloader = func(flags FetchFlags) (*download.Downloader, error) {
		return newDownloader(deps, flags)
	}

	return kongCtx.Run(deps)
}

// newDownloader wires a Downloader from the fetch flags shared by every
// command that reads a site.
func newDownloader(deps *Dependencies, flags FetchFlags) (*download.Downloader, error) {
	var fetcher webnovel.Fetcher
	switch flags.Client {
	case "", "std":
		fetcher = wnhttp.NewFetcher(wnhttp.WithTimeout(flags.Timeout))
	case "resty":
		fetcher = resty.NewFetcher(resty.WithTimeout(flags.Timeout))
	default:
		return nil, webnovel.Errorf(webnovel.EINVALID, "unknown client %q (want std or resty)", flags.Client)
	}

	var opts []goquery.Option
	switch flags.Fallback {
	case "", "none":
	case "readability":
		opts = append(opts, goquery.WithArticleExtractor(readability.NewExtractor()))
	case "trafilatura":
		opts = append(opts, goquery.WithArticleExtractor(trafilatura.NewExtractor()))
	default:
		return nil, webnovel.Errorf(webnovel.EINVALID, "unknown fallback %q (want none, readability or trafilatura)", flags.Fallback)
	}

	var limiter webnovel.RateLimiter
	if flags.RPS > 0 {
		limiter = download.NewDomainLimiter(flags.RPS)
	}

	return &download.Downloader{
		Fetcher:     wnslog.NewLoggingFetcher(fetcher, deps.Logger),
		Extractor:   goquery.NewExtractor(opts...),
		Normalizer:  webnovel.NewCleaner(),
		Novels:      deps.Novels,
		Chapters:    deps.Chapters,
		RateLimiter: limiter,
		Logger:      deps.Logger,
	}, nil
}

func defaultDBPath() string {
	if path := os.Getenv("WEBNOVEL_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "webnovel.db"
	}
	dir := filepath.Join(home, ".webnovel")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "webnovel.db")
}
