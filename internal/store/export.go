package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/nvandessel/wordcount/internal/wordcount"
)

// runRecord is one line of a JSONL history export.
type runRecord struct {
	Run
	Counts wordcount.Counts `json:"counts"`
}

// ExportJSONL writes every run in s to w, oldest first, one JSON object per
// line. It returns the number of runs written.
func ExportJSONL(ctx context.Context, s HistoryStore, w io.Writer) (int, error) {
	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list runs: %w", err)
	}
	slices.Reverse(runs)

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i, r := range runs {
		run, counts, err := s.GetRun(ctx, r.ID)
		if err != nil {
			return i, fmt.Errorf("failed to load run %d: %w", r.ID, err)
		}
		if err := enc.Encode(runRecord{Run: run, Counts: counts}); err != nil {
			return i, fmt.Errorf("failed to encode run %d: %w", r.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return len(runs), fmt.Errorf("failed to write export: %w", err)
	}
	return len(runs), nil
}

// ImportJSONL saves every run read from r into s. Runs get new IDs; their
// source, mode and creation time are kept. Blank lines are skipped. It
// returns the number of runs imported.
func ImportJSONL(ctx context.Context, s HistoryStore, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	imported := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec runRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return imported, fmt.Errorf("failed to parse line %d: %w", lineNum, err)
		}
		if rec.Counts == nil {
			rec.Counts = wordcount.Counts{}
		}
		for word, n := range rec.Counts {
			if !wordcount.IsWord(word) {
				return imported, fmt.Errorf("line %d: %q is not a word", lineNum, word)
			}
			if n < 1 {
				return imported, fmt.Errorf("line %d: count for %q must be positive, got %d", lineNum, word, n)
			}
		}

		rec.Run.ID = 0
		if _, err := s.SaveRun(ctx, rec.Run, rec.Counts); err != nil {
			return imported, fmt.Errorf("failed to import line %d: %w", lineNum, err)
		}
		imported++
	}

	if err := scanner.Err(); err != nil {
		return imported, fmt.Errorf("scanner error: %w", err)
	}
	return imported, nil
}
