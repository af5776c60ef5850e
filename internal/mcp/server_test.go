package mcp

import (
	"context"
	"slices"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/wordcount/internal/ratelimit"
)

func TestServer_ListsTools(t *testing.T) {
	server, _ := setupTestServer(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientTransport, serverTransport := sdk.NewInMemoryTransports()
	serverSession, err := server.server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	defer serverSession.Close()

	client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "v1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	for _, want := range []string{ratelimit.ToolCount, ratelimit.ToolCountFile, ratelimit.ToolCompare, ratelimit.ToolHistory} {
		if !slices.Contains(names, want) {
			t.Errorf("tool %s not registered (have %v)", want, names)
		}
	}

	call, err := session.CallTool(ctx, &sdk.CallToolParams{
		Name:      ratelimit.ToolCount,
		Arguments: map[string]any{"text": "b a b"},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if call.IsError {
		t.Fatalf("CallTool returned tool error: %+v", call.Content)
	}
}
