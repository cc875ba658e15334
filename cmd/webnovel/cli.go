package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/webnovel"
	"github.com/fwojciec/webnovel/download"
	"github.com/fwojciec/webnovel/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	DB       *sqlite.DB
	Novels   webnovel.NovelService
	Chapters webnovel.ChapterService
	Rules    webnovel.RuleService

	// NewDownloader builds a downloader for commands that read a site.
	NewDownloader func(FetchFlags) (*download.Downloader, error)

	// Track, if set, is told about the job being downloaded so that an
	// interrupt can cancel it.
	Track func(*download.Job)
}

// fail prints the user-facing message for err and returns it.
func (d *Dependencies) fail(err error) error {
	fmt.Fprintf(d.Stderr, "error: %s\n", webnovel.ErrorMessage(err))
	return err
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log every request and stored batch"`

	Download DownloadCmd `cmd:"" help:"Download a novel from its index page"`
	Check    CheckCmd    `cmd:"" help:"Compare a source with what is already downloaded"`
	Preview  PreviewCmd  `cmd:"" help:"Show a novel's metadata and chapter list without downloading"`
	Rule     RuleCmd     `cmd:"" help:"Manage site extraction rules"`
	List     ListCmd     `cmd:"" help:"List downloaded novels"`
	Chapters ChaptersCmd `cmd:"" help:"List the stored chapters of a novel"`
	Export   ExportCmd   `cmd:"" help:"Write a novel to a plain-text file"`
	Delete   DeleteCmd   `cmd:"" help:"Delete a novel and its chapters"`
}

// FetchFlags configures how pages are fetched and read.
type FetchFlags struct {
	Timeout  time.Duration `default:"15s" help:"Per-request timeout"`
	Client   string        `default:"std" enum:"std,resty" help:"HTTP client (std, resty)"`
	Fallback string        `default:"none" enum:"none,readability,trafilatura" help:"Article extractor used when selectors find no content"`
	RPS      float64       `name:"rps" default:"0" help:"Requests per second per host (0 for unlimited)"`
}

// DownloadCmd is the "download" subcommand.
type DownloadCmd struct {
	URL         string        `arg:"" help:"Novel index page URL"`
	Rule        string        `help:"Rule name (default: resolved from the URL host)"`
	Resume      bool          `help:"Continue a previous download of this URL"`
	Restart     bool          `help:"Start over as a new novel"`
	Force       bool          `help:"Resume even if the chapter list changed"`
	Concurrency int           `short:"c" default:"10" help:"Concurrent chapter downloads"`
	Batch       int           `default:"50" help:"Chapters stored per batch"`
	Stagger     time.Duration `default:"50ms" help:"Start delay per worker slot"`
	Retries     int           `default:"3" help:"Retries per chapter with exponential backoff"`
	FetchFlags  `embed:""`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	URL        string `arg:"" help:"Novel index page URL"`
	Rule       string `help:"Rule name (default: resolved from the URL host)"`
	FetchFlags `embed:""`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	URL        string `arg:"" help:"Novel index page URL"`
	Rule       string `help:"Rule name (default: resolved from the URL host)"`
	Limit      int    `short:"n" default:"20" help:"Chapters to show (0 for all)"`
	FetchFlags `embed:""`
}

// RuleCmd groups the rule subcommands.
type RuleCmd struct {
	Add    RuleAddCmd    `cmd:"" help:"Add or replace a rule"`
	List   RuleListCmd   `cmd:"" help:"List rules"`
	Delete RuleDeleteCmd `cmd:"" help:"Delete a rule"`
	Test   RuleTestCmd   `cmd:"" help:"Try a rule against an index page"`
	Import RuleImportCmd `cmd:"" help:"Import rules from a YAML file"`
	Export RuleExportCmd `cmd:"" help:"Print all rules as YAML"`
}

// RuleAddCmd is the "rule add" subcommand.
type RuleAddCmd struct {
	Domain       string   `arg:"" help:"Site domain, e.g. www.biquge.com"`
	Name         string   `help:"Rule name (default: the domain)"`
	ChapterList  string   `name:"chapter-list" help:"Selector for chapter entries on the index page"`
	ChapterTitle string   `name:"chapter-title" help:"Selector for the title inside an entry"`
	ChapterLink  string   `name:"chapter-link" help:"Selector for the link inside an entry"`
	Content      string   `help:"Selector for the chapter body"`
	Remove       []string `help:"Selectors removed before extraction (repeatable)"`
	Replace      bool     `help:"Replace an existing rule with the same name"`
}

// RuleListCmd is the "rule list" subcommand.
type RuleListCmd struct{}

// RuleDeleteCmd is the "rule delete" subcommand.
type RuleDeleteCmd struct {
	Name string `arg:"" help:"Rule name"`
}

// RuleTestCmd is the "rule test" subcommand.
type RuleTestCmd struct {
	URL        string `arg:"" help:"Novel index page URL"`
	Rule       string `help:"Rule name (default: resolved from the URL host)"`
	FetchFlags `embed:""`
}

// RuleImportCmd is the "rule import" subcommand.
type RuleImportCmd struct {
	File    string `arg:"" type:"existingfile" help:"YAML rule file"`
	Replace bool   `help:"Replace rules that already exist"`
}

// RuleExportCmd is the "rule export" subcommand.
type RuleExportCmd struct{}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// ChaptersCmd is the "chapters" subcommand.
type ChaptersCmd struct {
	NovelID string `arg:"" help:"Novel ID"`
	Full    bool   `help:"Show chapter content"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	NovelID string `arg:"" help:"Novel ID"`
	Path    string `arg:"" optional:"" default:"." help:"Output file or directory"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	NovelID string `arg:"" help:"Novel ID"`
	Force   bool   `help:"Confirm deletion"`
}
