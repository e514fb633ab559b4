package domain

import "time"

// LearnStatus is the lifecycle state of a recorded learn request.
type LearnStatus string

const (
	LearnRunning LearnStatus = "running"
	LearnDone    LearnStatus = "done"
	LearnFailed  LearnStatus = "failed"
)

// HistoryEntry is one learn request as recorded in the history store.
type HistoryEntry struct {
	ID         string
	RepoID     string
	RepoName   string
	Branch     string
	Query      string
	Status     LearnStatus
	OutputPath string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
}

// NewHistoryEntry starts a running entry for a confirmed form.
func NewHistoryEntry(repo *Repository, form MicroagentFormData) HistoryEntry {
	entry := HistoryEntry{
		Branch:    form.SelectedBranch,
		Query:     form.Query,
		Status:    LearnRunning,
		StartedAt: time.Now(),
	}
	if repo != nil {
		entry.RepoID = repo.ID()
		entry.RepoName = repo.FullName()
	}
	return entry
}
