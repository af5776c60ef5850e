package store

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/nvandessel/wordcount/internal/wordcount"
)

type memoryRun struct {
	run    Run
	counts wordcount.Counts
}

// InMemoryHistoryStore implements HistoryStore without persistence.
type InMemoryHistoryStore struct {
	mu     sync.RWMutex
	runs   map[int64]memoryRun
	nextID int64
}

// NewInMemoryHistoryStore creates an empty in-memory store.
func NewInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{
		runs:   make(map[int64]memoryRun),
		nextID: 1,
	}
}

// SaveRun stores a copy of counts.
func (s *InMemoryHistoryStore) SaveRun(ctx context.Context, run Run, counts wordcount.Counts) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run = summarize(run, counts)
	run.ID = s.nextID
	s.nextID++

	stored := make(wordcount.Counts, len(counts))
	maps.Copy(stored, counts)
	s.runs[run.ID] = memoryRun{run: run, counts: stored}
	return run.ID, nil
}

// ListRuns returns runs newest first.
func (s *InMemoryHistoryStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r.run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// GetRun returns a copy of the stored counts.
func (s *InMemoryHistoryStore) GetRun(ctx context.Context, id int64) (Run, wordcount.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return Run{}, nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	counts := make(wordcount.Counts, len(r.counts))
	maps.Copy(counts, r.counts)
	return r.run, counts, nil
}

// DeleteRun removes a run.
func (s *InMemoryHistoryStore) DeleteRun(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	delete(s.runs, id)
	return nil
}

// Close is a no-op.
func (s *InMemoryHistoryStore) Close() error {
	return nil
}
