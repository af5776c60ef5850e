package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/nvandessel/wordcount/internal/config"
	"github.com/nvandessel/wordcount/internal/logging"
	"github.com/nvandessel/wordcount/internal/report"
	"github.com/nvandessel/wordcount/internal/store"
	"github.com/nvandessel/wordcount/internal/textio"
	"github.com/nvandessel/wordcount/internal/wordcount"
	"github.com/spf13/cobra"
)

// countResult is the JSON form of a count report.
type countResult struct {
	Source        string         `json:"source"`
	Mode          string         `json:"mode"`
	TotalWords    int            `json:"total_words"`
	DistinctWords int            `json:"distinct_words"`
	HistoryID     int64          `json:"history_id,omitempty"`
	Entries       []report.Entry `json:"entries"`
}

func newCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count [file...]",
		Short: "Count words and print them by frequency",
		Long: `Count word occurrences in the given files, or stdin when no file (or "-")
is given, and print one "word, count" line per word, most frequent first.
Words with equal counts are listed in ascending order.

Several files are counted together into one report.

Examples:
  wordcount count notes.txt
  cat notes.txt | wordcount count
  wordcount count --top 10 a.txt b.txt
  wordcount count --mode text -o report.txt notes.txt
  wordcount count --save --json notes.txt
  wordcount count --progress logs/*.txt`,
		RunE: runCount,
	}

	cmd.Flags().String("mode", "", "Input mode: lines or text (default from config)")
	cmd.Flags().StringP("output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().Int("top", 0, "Only report the N most frequent words, 0 for all (default from config)")
	cmd.Flags().Bool("save", false, "Record this run in the history database")
	cmd.Flags().Bool("progress", false, "Show a progress bar on stderr while reading files")

	return cmd
}

func runCount(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	jsonOut, _ := cmd.Flags().GetBool("json")
	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")
	showProgress, _ := cmd.Flags().GetBool("progress")

	mode := a.cfg.Count.Mode
	if cmd.Flags().Changed("mode") {
		mode, _ = cmd.Flags().GetString("mode")
	}
	if err := config.ValidateMode(mode); err != nil {
		return err
	}
	top := a.cfg.Count.Top
	if cmd.Flags().Changed("top") {
		top, _ = cmd.Flags().GetInt("top")
	}
	if top < 0 {
		return fmt.Errorf("--top must be non-negative, got %d", top)
	}

	sources := args
	if len(sources) == 0 {
		sources = []string{textio.Stdio}
	}
	if err := checkStdinOnce(sources); err != nil {
		return err
	}

	var progress io.Writer
	if showProgress {
		progress = cmd.ErrOrStderr()
	}

	start := time.Now()
	counts, err := countSources(sources, mode, progress)
	if err != nil {
		return err
	}
	source := strings.Join(sources, ",")

	result := countResult{
		Source:        source,
		Mode:          mode,
		TotalWords:    wordcount.Total(counts),
		DistinctWords: len(counts),
		Entries:       report.Top(report.Sorted(counts), top),
	}
	a.logger.Debug("counted", "source", source, "mode", mode,
		"total_words", result.TotalWords, "distinct_words", result.DistinctWords)

	if save || a.cfg.History.Enabled {
		hist, err := a.openHistory(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer hist.Close()

		id, err := hist.SaveRun(cmd.Context(), store.Run{Source: source, Mode: mode}, counts)
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		result.HistoryID = id
		a.logger.Debug("saved run", "id", id)
	}

	var out string
	if jsonOut {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		out = string(data) + "\n"
	} else {
		out = report.RenderEntries(result.Entries)
	}
	a.logger.Log(cmd.Context(), logging.LevelTrace, "rendered report", "report", out)

	if err := writeOutput(cmd.OutOrStdout(), outputPath, out); err != nil {
		return err
	}

	a.runs.Log(logging.RunEvent{
		Command:       "count",
		Sources:       sources,
		Mode:          mode,
		TotalWords:    result.TotalWords,
		DistinctWords: result.DistinctWords,
		DurationMs:    time.Since(start).Milliseconds(),
		HistoryID:     result.HistoryID,
	})
	return nil
}

// countSources counts all sources into one Counts. In lines mode every file
// contributes its lines; in text mode every file is one input. Words never
// span two files in either mode. A non-nil progress receives a bar that
// advances once per source.
func countSources(sources []string, mode string, progress io.Writer) (wordcount.Counts, error) {
	var bar *pb.ProgressBar
	if progress != nil {
		bar = pb.New(len(sources)).SetWriter(progress).Start()
		defer bar.Finish()
	}

	var inputs []string
	for _, src := range sources {
		if bar != nil {
			bar.Increment()
		}
		if mode == config.ModeText {
			text, err := textio.ReadAll(src)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, text)
			continue
		}
		lines, err := textio.ReadLines(src)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, lines...)
	}
	return wordcount.Count(inputs), nil
}

// checkStdinOnce rejects source lists naming stdin more than once; the
// second read would see an exhausted stream.
func checkStdinOnce(sources []string) error {
	seen := false
	for _, src := range sources {
		if src != textio.Stdio {
			continue
		}
		if seen {
			return fmt.Errorf("stdin (%q) can only be given once", textio.Stdio)
		}
		seen = true
	}
	return nil
}

// writeOutput writes text to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path, text string) error {
	if path == "" || path == textio.Stdio {
		if _, err := io.WriteString(w, text); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	return textio.WriteFile(path, text)
}
