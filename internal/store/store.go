// Package store records counting runs so their reports can be listed and
// re-rendered later.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nvandessel/wordcount/internal/wordcount"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run is the summary of one recorded counting operation.
type Run struct {
	ID            int64     `json:"id"`
	Source        string    `json:"source"`
	Mode          string    `json:"mode"`
	TotalWords    int       `json:"total_words"`
	DistinctWords int       `json:"distinct_words"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryStore persists runs together with their word counts.
type HistoryStore interface {
	// SaveRun stores counts under a new run and returns its ID.
	// TotalWords and DistinctWords are computed from counts; ID is assigned;
	// a zero CreatedAt is set to the current time.
	SaveRun(ctx context.Context, run Run, counts wordcount.Counts) (int64, error)

	// ListRuns returns the most recent runs first. limit <= 0 returns all.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// GetRun returns a run and its counts, or ErrRunNotFound.
	GetRun(ctx context.Context, id int64) (Run, wordcount.Counts, error)

	// DeleteRun removes a run and its counts, or returns ErrRunNotFound.
	DeleteRun(ctx context.Context, id int64) error

	Close() error
}

// summarize fills the derived fields of run from counts.
func summarize(run Run, counts wordcount.Counts) Run {
	run.TotalWords = wordcount.Total(counts)
	run.DistinctWords = len(counts)
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	return run
}
