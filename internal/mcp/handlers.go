package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/wordcount/internal/config"
	"github.com/nvandessel/wordcount/internal/pathutil"
	"github.com/nvandessel/wordcount/internal/ratelimit"
	"github.com/nvandessel/wordcount/internal/report"
	"github.com/nvandessel/wordcount/internal/store"
	"github.com/nvandessel/wordcount/internal/textio"
	"github.com/nvandessel/wordcount/internal/wordcount"
)

const (
	latestReportURI    = "wordcount://history/latest"
	defaultHistorySize = 20
)

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolCount,
		Description: "Count word occurrences in a text and return them ordered by frequency",
	}, s.handleCount)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolCountFile,
		Description: "Count word occurrences in a file under the server root",
	}, s.handleCountFile)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolCompare,
		Description: "Report whether two texts have identical word counts, and which words differ",
	}, s.handleCompare)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolHistory,
		Description: "List recorded counting runs, newest first",
	}, s.handleHistory)
}

func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         latestReportURI,
		Name:        "wordcount-latest-report",
		Description: "Frequency report of the most recent recorded counting run.",
		MIMEType:    "text/plain",
	}, s.handleLatestReport)
}

func (s *Server) handleCount(ctx context.Context, req *sdk.CallToolRequest, args CountInput) (_ *sdk.CallToolResult, _ CountOutput, err error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolCount, start, err, map[string]interface{}{"text": args.Text, "top": args.Top})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolCount); err != nil {
		return nil, CountOutput{}, err
	}
	if args.Top < 0 {
		return nil, CountOutput{}, fmt.Errorf("top must be non-negative, got %d", args.Top)
	}

	counts := wordcount.CountText(args.Text)
	out, err := s.countOutput(ctx, store.Run{Source: "mcp:text", Mode: config.ModeText}, counts, args.Top)
	if err != nil {
		return nil, CountOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleCountFile(ctx context.Context, req *sdk.CallToolRequest, args CountFileInput) (_ *sdk.CallToolResult, _ CountOutput, err error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolCountFile, start, err, map[string]interface{}{"path": args.Path, "mode": args.Mode, "top": args.Top})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolCountFile); err != nil {
		return nil, CountOutput{}, err
	}
	if args.Path == "" {
		return nil, CountOutput{}, fmt.Errorf("'path' parameter is required")
	}
	if args.Top < 0 {
		return nil, CountOutput{}, fmt.Errorf("top must be non-negative, got %d", args.Top)
	}
	mode := args.Mode
	if mode == "" {
		mode = config.ModeLines
	}
	if err := config.ValidateMode(mode); err != nil {
		return nil, CountOutput{}, err
	}

	path, err := pathutil.ResolveInRoot(s.root, args.Path)
	if err != nil {
		return nil, CountOutput{}, err
	}

	var counts wordcount.Counts
	if mode == config.ModeText {
		text, err := textio.ReadAll(path)
		if err != nil {
			return nil, CountOutput{}, err
		}
		counts = wordcount.CountText(text)
	} else {
		lines, err := textio.ReadLines(path)
		if err != nil {
			return nil, CountOutput{}, err
		}
		counts = wordcount.Count(lines)
	}

	out, err := s.countOutput(ctx, store.Run{Source: args.Path, Mode: mode}, counts, args.Top)
	if err != nil {
		return nil, CountOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleCompare(ctx context.Context, req *sdk.CallToolRequest, args CompareInput) (_ *sdk.CallToolResult, _ CompareOutput, err error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolCompare, start, err, map[string]interface{}{"left": args.Left, "right": args.Right})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolCompare); err != nil {
		return nil, CompareOutput{}, err
	}

	left := wordcount.CountText(args.Left)
	right := wordcount.CountText(args.Right)
	return nil, CompareOutput{
		Equal:       wordcount.Equal(left, right),
		Differences: wordcount.Diff(left, right),
	}, nil
}

func (s *Server) handleHistory(ctx context.Context, req *sdk.CallToolRequest, args HistoryInput) (_ *sdk.CallToolResult, _ HistoryOutput, err error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolHistory, start, err, map[string]interface{}{"limit": args.Limit})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolHistory); err != nil {
		return nil, HistoryOutput{}, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultHistorySize
	}
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}

	out := HistoryOutput{Runs: make([]RunSummary, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, RunSummary{
			ID:            r.ID,
			Source:        r.Source,
			Mode:          r.Mode,
			TotalWords:    r.TotalWords,
			DistinctWords: r.DistinctWords,
			CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return nil, out, nil
}

func (s *Server) handleLatestReport(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	text := "No counting runs recorded yet.\n"

	runs, err := s.store.ListRuns(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) > 0 {
		run, counts, err := s.store.GetRun(ctx, runs[0].ID)
		if err != nil && !errors.Is(err, store.ErrRunNotFound) {
			return nil, fmt.Errorf("failed to load run %d: %w", runs[0].ID, err)
		}
		if err == nil {
			text = fmt.Sprintf("# run %d: %s (%s), %s\n", run.ID, run.Source, run.Mode, run.CreatedAt.Format(time.RFC3339)) +
				report.Render(counts)
		}
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      latestReportURI,
				MIMEType: "text/plain",
				Text:     text,
			},
		},
	}, nil
}

// countOutput builds the tool result and records the run when recording is on.
func (s *Server) countOutput(ctx context.Context, run store.Run, counts wordcount.Counts, top int) (CountOutput, error) {
	entries := report.Top(report.Sorted(counts), top)
	out := CountOutput{
		Entries:       entries,
		TotalWords:    wordcount.Total(counts),
		DistinctWords: len(counts),
		Report:        report.RenderEntries(entries),
	}

	if s.record {
		id, err := s.store.SaveRun(ctx, run, counts)
		if err != nil {
			return CountOutput{}, fmt.Errorf("failed to record run: %w", err)
		}
		out.HistoryID = id
	}

	s.logger.Debug("counted", "source", run.Source, "mode", run.Mode,
		"total_words", out.TotalWords, "distinct_words", out.DistinctWords)
	return out, nil
}
