package webnovel

// ResumeDecision describes prior progress for a source URL. It is computed
// fresh for every attempt and never persisted.
type ResumeDecision struct {
	// NovelID is empty when nothing was downloaded from the source before.
	NovelID    string `json:"novelId"`
	Title      string `json:"title"`
	Downloaded int    `json:"downloaded"`
	NewTotal   int    `json:"newTotal"`

	// Diverged is set when the last persisted chapter no longer matches the
	// chapter at the same position of the fresh list.
	Diverged bool `json:"diverged"`
}

// Exists reports whether a prior novel was found.
func (d *ResumeDecision) Exists() bool {
	return d != nil && d.NovelID != ""
}

// AlreadyComplete reports whether every chapter of the fresh list is stored.
func (d *ResumeDecision) AlreadyComplete() bool {
	return d.Exists() && d.Downloaded >= d.NewTotal
}

// ResumeAction is the caller's choice after inspecting a ResumeDecision.
type ResumeAction int

const (
	// ActionResume continues the prior novel from the stored count.
	ActionResume ResumeAction = iota
	// ActionRestart starts a new novel record from the first chapter.
	ActionRestart
	// ActionCancel starts nothing.
	ActionCancel
)

func (a ResumeAction) String() string {
	switch a {
	case ActionResume:
		return "resume"
	case ActionRestart:
		return "restart"
	case ActionCancel:
		return "cancel"
	}
	return "unknown"
}
