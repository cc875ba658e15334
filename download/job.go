package download

import (
	"sync/atomic"

	"github.com/fwojciec/webnovel"
)

// State is the lifecycle phase of a Job.
type State int32

const (
	StateIdle State = iota
	StateFetchingIndex
	StateExtractingList
	StateDownloading
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetchingIndex:
		return "fetching index"
	case StateExtractingList:
		return "extracting chapter list"
	case StateDownloading:
		return "downloading"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// Job is one download attempt. It holds its own copy of the rule so that
// edits made while it runs do not affect it. A Job is used by a single
// Run call; Cancel and the accessors are safe to call from any goroutine.
type Job struct {
	SourceURL string
	Rule      *webnovel.Rule

	// NovelID is empty for a fresh download; Run then creates the novel.
	NovelID string

	// Offset is the number of chapters already stored; downloading
	// starts at this ordinal.
	Offset int

	// Index, when set, is used instead of fetching the index page again.
	Index *Index

	cancelled atomic.Bool
	state     atomic.Int32
	completed atomic.Int64
	total     atomic.Int64
}

// NewJob returns an idle job for sourceURL using a copy of rule.
func NewJob(sourceURL string, rule *webnovel.Rule) *Job {
	return &Job{
		SourceURL: sourceURL,
		Rule:      rule.Clone(),
	}
}

// Cancel requests cooperative cancellation. Chapters already being
// downloaded finish and are persisted; no new chapters start.
func (j *Job) Cancel() {
	j.cancelled.Store(true)
}

// Cancelled reports whether Cancel was called.
func (j *Job) Cancelled() bool {
	return j.cancelled.Load()
}

// State returns the current lifecycle phase.
func (j *Job) State() State {
	return State(j.state.Load())
}

// Active reports whether the job has started and not yet finished.
func (j *Job) Active() bool {
	s := j.State()
	return s != StateIdle && !s.Terminal()
}

// Completed returns the number of chapters handled so far, counting the
// resume offset.
func (j *Job) Completed() int {
	return int(j.completed.Load())
}

// Total returns the number of chapters in the list, or zero before the
// list is known.
func (j *Job) Total() int {
	return int(j.total.Load())
}

// Apply configures the job from a resume decision and the caller's choice.
// ActionCancel marks the job cancelled and returns a cancellation error.
func (j *Job) Apply(d *webnovel.ResumeDecision, action webnovel.ResumeAction) error {
	switch action {
	case webnovel.ActionResume:
		if d.Exists() {
			j.NovelID = d.NovelID
			j.Offset = d.Downloaded
		}
	case webnovel.ActionRestart:
		j.NovelID = ""
		j.Offset = 0
	case webnovel.ActionCancel:
		j.Cancel()
		j.setState(StateCancelled)
		return webnovel.Canceled("download canceled before start")
	default:
		return webnovel.Errorf(webnovel.EINVALID, "unknown resume action %d", action)
	}
	return nil
}

func (j *Job) setState(s State) {
	j.state.Store(int32(s))
}
