package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nvandessel/wordcount/internal/config"
	"github.com/nvandessel/wordcount/internal/logging"
	"github.com/nvandessel/wordcount/internal/wordcount"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <file-a> <file-b>",
		Short: "Check whether two inputs have identical word counts",
		Long: `Count both inputs and report whether every word occurs the same number
of times in each. Words whose counts differ are listed.

Use "-" for one of the inputs to read stdin.

Examples:
  wordcount compare draft.txt final.txt
  wordcount compare --json a.txt b.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			jsonOut, _ := cmd.Flags().GetBool("json")
			mode := a.cfg.Count.Mode
			if cmd.Flags().Changed("mode") {
				mode, _ = cmd.Flags().GetString("mode")
			}
			if err := config.ValidateMode(mode); err != nil {
				return err
			}

			if err := checkStdinOnce(args); err != nil {
				return err
			}

			start := time.Now()
			left, err := countSources(args[:1], mode, nil)
			if err != nil {
				return err
			}
			right, err := countSources(args[1:], mode, nil)
			if err != nil {
				return err
			}

			equal := wordcount.Equal(left, right)
			diffs := wordcount.Diff(left, right)
			a.logger.Debug("compared", "left", args[0], "right", args[1], "equal", equal, "differences", len(diffs))
			a.runs.Log(logging.RunEvent{
				Command:       "compare",
				Sources:       args,
				Mode:          mode,
				TotalWords:    wordcount.Total(left) + wordcount.Total(right),
				DistinctWords: len(left) + len(right),
				DurationMs:    time.Since(start).Milliseconds(),
			})

			out := cmd.OutOrStdout()
			if jsonOut {
				if diffs == nil {
					diffs = []wordcount.Difference{}
				}
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"left":        args[0],
					"right":       args[1],
					"equal":       equal,
					"differences": diffs,
				})
			}

			if equal {
				fmt.Fprintf(out, "Word counts are identical (%d distinct words).\n", len(left))
				return nil
			}
			fmt.Fprintf(out, "Word counts differ in %d words:\n", len(diffs))
			for _, d := range diffs {
				fmt.Fprintf(out, "  %s: %d -> %d\n", d.Word, d.Left, d.Right)
			}
			return nil
		},
	}

	cmd.Flags().String("mode", "", "Input mode: lines or text (default from config)")

	return cmd
}
