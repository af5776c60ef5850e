package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/wordcount/internal/ratelimit"
	"github.com/nvandessel/wordcount/internal/store"
)

func setupTestServer(t *testing.T, record bool) (*Server, string) {
	t.Helper()
	root := t.TempDir()

	server, err := NewServer(&Config{
		Name:    "test-server",
		Version: "v1.0.0",
		Root:    root,
		Store:   store.NewInMemoryHistoryStore(),
		Record:  record,
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { server.Close() })

	return server, root
}

func TestNewServer_RequiresRoot(t *testing.T) {
	if _, err := NewServer(&Config{Name: "x", Version: "1"}); err == nil {
		t.Error("expected error without root")
	}
}

func TestHandleCount(t *testing.T) {
	server, _ := setupTestServer(t, false)
	ctx := context.Background()

	result, out, err := server.handleCount(ctx, &sdk.CallToolRequest{}, CountInput{
		Text: "the cat and the hat\nthe end",
	})
	if err != nil {
		t.Fatalf("handleCount failed: %v", err)
	}
	if result != nil {
		t.Error("Expected nil result (SDK auto-populates)")
	}

	if out.TotalWords != 7 {
		t.Errorf("TotalWords = %d, want 7", out.TotalWords)
	}
	if out.DistinctWords != 5 {
		t.Errorf("DistinctWords = %d, want 5", out.DistinctWords)
	}
	if len(out.Entries) != 5 || out.Entries[0].Word != "the" || out.Entries[0].Count != 3 {
		t.Errorf("unexpected entries: %+v", out.Entries)
	}
	if want := "the, 3\nand, 1\ncat, 1\nend, 1\nhat, 1\n"; out.Report != want {
		t.Errorf("Report = %q, want %q", out.Report, want)
	}
	if out.HistoryID != 0 {
		t.Errorf("HistoryID = %d, want 0 when not recording", out.HistoryID)
	}
}

func TestHandleCount_Top(t *testing.T) {
	server, _ := setupTestServer(t, false)

	_, out, err := server.handleCount(context.Background(), &sdk.CallToolRequest{}, CountInput{
		Text: "a a a b b c",
		Top:  2,
	})
	if err != nil {
		t.Fatalf("handleCount failed: %v", err)
	}
	if len(out.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(out.Entries))
	}
	if out.TotalWords != 6 {
		t.Errorf("TotalWords should cover all words, got %d", out.TotalWords)
	}
	if out.Report != "a, 3\nb, 2\n" {
		t.Errorf("Report = %q", out.Report)
	}

	if _, _, err := server.handleCount(context.Background(), &sdk.CallToolRequest{}, CountInput{Text: "x", Top: -1}); err == nil {
		t.Error("expected error for negative top")
	}
}

func TestHandleCount_EmptyText(t *testing.T) {
	server, _ := setupTestServer(t, false)

	_, out, err := server.handleCount(context.Background(), &sdk.CallToolRequest{}, CountInput{Text: "  ,, "})
	if err != nil {
		t.Fatalf("handleCount failed: %v", err)
	}
	if out.Entries == nil || len(out.Entries) != 0 {
		t.Errorf("Entries = %#v, want empty non-nil slice", out.Entries)
	}
	if out.Report != "" {
		t.Errorf("Report = %q, want empty", out.Report)
	}
}

func TestHandleCount_Records(t *testing.T) {
	server, _ := setupTestServer(t, true)
	ctx := context.Background()

	_, out, err := server.handleCount(ctx, &sdk.CallToolRequest{}, CountInput{Text: "go go"})
	if err != nil {
		t.Fatalf("handleCount failed: %v", err)
	}
	if out.HistoryID == 0 {
		t.Fatal("expected a history ID when recording")
	}

	_, hist, err := server.handleHistory(ctx, &sdk.CallToolRequest{}, HistoryInput{})
	if err != nil {
		t.Fatalf("handleHistory failed: %v", err)
	}
	if len(hist.Runs) != 1 {
		t.Fatalf("len(Runs) = %d, want 1", len(hist.Runs))
	}
	run := hist.Runs[0]
	if run.ID != out.HistoryID || run.Source != "mcp:text" || run.TotalWords != 2 || run.DistinctWords != 1 {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.CreatedAt == "" {
		t.Error("CreatedAt should be set")
	}
}

func TestHandleCountFile(t *testing.T) {
	server, root := setupTestServer(t, false)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(root, "input.txt"), []byte("one,two\r\ntwo three\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	for _, mode := range []string{"", "lines", "text"} {
		t.Run("mode "+mode, func(t *testing.T) {
			_, out, err := server.handleCountFile(ctx, &sdk.CallToolRequest{}, CountFileInput{Path: "input.txt", Mode: mode})
			if err != nil {
				t.Fatalf("handleCountFile failed: %v", err)
			}
			if want := "two, 2\none, 1\nthree, 1\n"; out.Report != want {
				t.Errorf("Report = %q, want %q", out.Report, want)
			}
		})
	}
}

func TestHandleCountFile_Errors(t *testing.T) {
	server, root := setupTestServer(t, false)
	ctx := context.Background()

	outside := filepath.Join(t.TempDir(), "outside.txt")
	if err := os.WriteFile(outside, []byte("secret words"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "ok.txt"), []byte("fine"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name    string
		args    CountFileInput
		errPart string
	}{
		{"missing path", CountFileInput{}, "required"},
		{"outside root", CountFileInput{Path: outside}, "outside allowed directories"},
		{"traversal", CountFileInput{Path: "../outside.txt"}, "outside allowed directories"},
		{"bad mode", CountFileInput{Path: "ok.txt", Mode: "words"}, "invalid mode"},
		{"missing file", CountFileInput{Path: "nope.txt"}, "failed to read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := server.handleCountFile(ctx, &sdk.CallToolRequest{}, tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error = %v, want containing %q", err, tt.errPart)
			}
		})
	}
}

func TestHandleCompare(t *testing.T) {
	server, _ := setupTestServer(t, false)
	ctx := context.Background()

	_, out, err := server.handleCompare(ctx, &sdk.CallToolRequest{}, CompareInput{
		Left:  "foo\nbar",
		Right: "bar foo",
	})
	if err != nil {
		t.Fatalf("handleCompare failed: %v", err)
	}
	if !out.Equal || len(out.Differences) != 0 {
		t.Errorf("expected equal counts, got %+v", out)
	}

	_, out, err = server.handleCompare(ctx, &sdk.CallToolRequest{}, CompareInput{
		Left:  "Cat cat",
		Right: "cat cat",
	})
	if err != nil {
		t.Fatalf("handleCompare failed: %v", err)
	}
	if out.Equal {
		t.Error("case-different texts should not be equal")
	}
	if len(out.Differences) != 2 || out.Differences[0].Word != "Cat" || out.Differences[1].Right != 2 {
		t.Errorf("unexpected differences: %+v", out.Differences)
	}
}

func TestHandleHistory_Limit(t *testing.T) {
	server, _ := setupTestServer(t, true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := server.handleCount(ctx, &sdk.CallToolRequest{}, CountInput{Text: "x"}); err != nil {
			t.Fatalf("handleCount failed: %v", err)
		}
	}

	_, out, err := server.handleHistory(ctx, &sdk.CallToolRequest{}, HistoryInput{Limit: 2})
	if err != nil {
		t.Fatalf("handleHistory failed: %v", err)
	}
	if len(out.Runs) != 2 {
		t.Errorf("len(Runs) = %d, want 2", len(out.Runs))
	}
	if out.Runs[0].ID < out.Runs[1].ID {
		t.Error("runs should be newest first")
	}
}

func TestHandleCount_RateLimited(t *testing.T) {
	server, _ := setupTestServer(t, false)
	server.toolLimiters = ratelimit.ToolLimiters{
		ratelimit.ToolCount: ratelimit.NewLimiter(0, 1),
	}
	ctx := context.Background()

	if _, _, err := server.handleCount(ctx, &sdk.CallToolRequest{}, CountInput{Text: "a"}); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	_, _, err := server.handleCount(ctx, &sdk.CallToolRequest{}, CountInput{Text: "a"})
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("expected rate limit error, got %v", err)
	}
}

func TestHandleCountFile_RateLimited(t *testing.T) {
	server, root := setupTestServer(t, false)
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("a b a"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	ctx := context.Background()
	args := CountFileInput{Path: "notes.txt"}

	// Default limits: a burst of 5 file reads, then one every 2s.
	for i := 0; i < 5; i++ {
		if _, _, err := server.handleCountFile(ctx, &sdk.CallToolRequest{}, args); err != nil {
			t.Fatalf("call %d failed: %v", i+1, err)
		}
	}
	_, _, err := server.handleCountFile(ctx, &sdk.CallToolRequest{}, args)
	if err == nil || !strings.Contains(err.Error(), ratelimit.ToolCountFile) {
		t.Errorf("expected rate limit error for %s, got %v", ratelimit.ToolCountFile, err)
	}

	// Inline counting has its own budget.
	if _, _, err := server.handleCount(ctx, &sdk.CallToolRequest{}, CountInput{Text: "a"}); err != nil {
		t.Errorf("handleCount limited by file reads: %v", err)
	}
}

func TestHandleLatestReport(t *testing.T) {
	server, _ := setupTestServer(t, true)
	ctx := context.Background()

	res, err := server.handleLatestReport(ctx, &sdk.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleLatestReport failed: %v", err)
	}
	if len(res.Contents) != 1 || !strings.Contains(res.Contents[0].Text, "No counting runs") {
		t.Errorf("unexpected empty report: %+v", res.Contents)
	}

	if _, _, err := server.handleCount(ctx, &sdk.CallToolRequest{}, CountInput{Text: "b b a"}); err != nil {
		t.Fatalf("handleCount failed: %v", err)
	}

	res, err = server.handleLatestReport(ctx, &sdk.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleLatestReport failed: %v", err)
	}
	text := res.Contents[0].Text
	if !strings.HasPrefix(text, "# run 1: mcp:text (text)") {
		t.Errorf("missing header: %q", text)
	}
	if !strings.HasSuffix(text, "b, 2\na, 1\n") {
		t.Errorf("missing report body: %q", text)
	}
	if res.Contents[0].URI != latestReportURI {
		t.Errorf("URI = %q", res.Contents[0].URI)
	}
}
