package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/wordcount/internal/config"
	"github.com/nvandessel/wordcount/internal/mcp"
	"github.com/nvandessel/wordcount/internal/store"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve word counting tools over MCP (stdio)",
		Long: `Run a Model Context Protocol server on stdin/stdout.

Tools: wordcount_count, wordcount_count_file, wordcount_compare,
wordcount_history. Files passed to wordcount_count_file must be inside --root.

With --record (or history.enabled), every counting call is saved to the
history database; otherwise history lives only as long as the server.
Tool calls are audited to ~/.wordcount/audit.jsonl without their text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			root, _ := cmd.Flags().GetString("root")
			record, _ := cmd.Flags().GetBool("record")
			record = record || a.cfg.History.Enabled

			absRoot, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("failed to resolve root: %w", err)
			}

			auditDir := ""
			if noAudit, _ := cmd.Flags().GetBool("no-audit"); !noAudit {
				if dir, err := config.Dir(); err == nil {
					auditDir = dir
				}
			}

			var hist store.HistoryStore
			if record {
				sqliteStore, err := a.openHistory(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to open history: %w", err)
				}
				hist = sqliteStore
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "wordcount",
				Version:  version,
				Root:     absRoot,
				Store:    hist,
				Record:   record,
				AuditDir: auditDir,
				Logger:   a.logger,
			})
			if err != nil {
				if hist != nil {
					hist.Close()
				}
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer server.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			notifySignals(sigChan)
			go func() {
				select {
				case <-sigChan:
					cancel()
				case <-ctx.Done():
				}
			}()

			return server.Run(ctx)
		},
	}

	cmd.Flags().String("root", ".", "Directory that wordcount_count_file may read from")
	cmd.Flags().Bool("record", false, "Record every counting call in the history database")
	cmd.Flags().Bool("no-audit", false, "Do not append tool calls to ~/.wordcount/audit.jsonl")

	return cmd
}
