package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nvandessel/wordcount/internal/report"
	"github.com/nvandessel/wordcount/internal/store"
	"github.com/nvandessel/wordcount/internal/textio"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded counting runs",
		Long: `List, show and delete counting runs recorded with "count --save"
or with history.enabled set in the configuration.

Runs are stored in ~/.wordcount/history.db unless history.path says otherwise.

Examples:
  wordcount history list
  wordcount history show 3 --top 20
  wordcount history delete 3
  wordcount history export -o runs.jsonl
  wordcount history import runs.jsonl`,
	}

	cmd.AddCommand(
		newHistoryListCmd(),
		newHistoryShowCmd(),
		newHistoryDeleteCmd(),
		newHistoryExportCmd(),
		newHistoryImportCmd(),
	)

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")

			hist, err := a.openHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer hist.Close()

			runs, err := hist.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"runs":  runs,
					"count": len(runs),
				})
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			fmt.Fprintf(out, "%-6s %-20s %-6s %8s %8s  %s\n", "ID", "CREATED", "MODE", "WORDS", "DISTINCT", "SOURCE")
			for _, r := range runs {
				fmt.Fprintf(out, "%-6d %-20s %-6s %8d %8d  %s\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Mode, r.TotalWords, r.DistinctWords, r.Source)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 for all)")

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the report of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRunID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			jsonOut, _ := cmd.Flags().GetBool("json")
			top, _ := cmd.Flags().GetInt("top")
			if top < 0 {
				return fmt.Errorf("--top must be non-negative, got %d", top)
			}

			hist, err := a.openHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer hist.Close()

			run, counts, err := hist.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}
			entries := report.Top(report.Sorted(counts), top)

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(countResult{
					Source:        run.Source,
					Mode:          run.Mode,
					TotalWords:    run.TotalWords,
					DistinctWords: run.DistinctWords,
					HistoryID:     run.ID,
					Entries:       entries,
				})
			}
			fmt.Fprint(out, report.RenderEntries(entries))
			return nil
		},
	}

	cmd.Flags().Int("top", 0, "Only show the N most frequent words (0 for all)")

	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRunID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			jsonOut, _ := cmd.Flags().GetBool("json")

			hist, err := a.openHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer hist.Close()

			if err := hist.DeleteRun(cmd.Context(), id); err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status": "deleted",
					"id":     id,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %d\n", id)
			return nil
		},
	}
}

func newHistoryExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all runs as JSONL, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			outputPath, _ := cmd.Flags().GetString("output")

			hist, err := a.openHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer hist.Close()

			var buf bytes.Buffer
			n, err := store.ExportJSONL(cmd.Context(), hist, &buf)
			if err != nil {
				return err
			}
			a.logger.Debug("exported runs", "count", n)

			return writeOutput(cmd.OutOrStdout(), outputPath, buf.String())
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write the export to this file instead of stdout")

	return cmd
}

func newHistoryImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import runs from a JSONL export",
		Long: `Import runs written by "history export". Imported runs get new IDs
and keep their source, mode and creation time. Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			jsonOut, _ := cmd.Flags().GetBool("json")

			data, err := textio.ReadAll(args[0])
			if err != nil {
				return err
			}

			hist, err := a.openHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer hist.Close()

			n, err := store.ImportJSONL(cmd.Context(), hist, strings.NewReader(data))
			if err != nil {
				return fmt.Errorf("imported %d runs before failing: %w", n, err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status":   "imported",
					"imported": n,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d runs\n", n)
			return nil
		},
	}
}

func parseRunID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid run id: %q", s)
	}
	return id, nil
}
