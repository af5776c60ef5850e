// Package mcp serves word counting to agents over the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/wordcount/internal/ratelimit"
	"github.com/nvandessel/wordcount/internal/store"
)

// Server wraps the MCP SDK server with the wordcount tools.
type Server struct {
	server       *sdk.Server
	store        store.HistoryStore
	root         string
	record       bool
	toolLimiters ratelimit.ToolLimiters
	auditLogger  *AuditLogger
	logger       *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "wordcount")
	Version string // Server version
	Root    string // Directory that wordcount_count_file may read from

	// Store receives recorded runs and backs wordcount_history.
	// Nil means an in-memory store.
	Store store.HistoryStore

	// Record saves every counting tool call to Store.
	Record bool

	// AuditDir receives audit.jsonl, one line per tool call.
	// Empty disables auditing.
	AuditDir string

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// NewServer creates an MCP server with the wordcount tools registered.
// The server owns cfg.Store and closes it in Close.
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("server root is required")
	}

	historyStore := cfg.Store
	if historyStore == nil {
		historyStore = store.NewInMemoryHistoryStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var auditLogger *AuditLogger
	if cfg.AuditDir != "" {
		var err error
		auditLogger, err = NewAuditLogger(cfg.AuditDir)
		if err != nil {
			// Auditing is best effort; serving continues without it.
			logger.Warn("audit log disabled", "error", err)
		}
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server:       mcpServer,
		store:        historyStore,
		root:         cfg.Root,
		record:       cfg.Record,
		toolLimiters: ratelimit.NewToolLimiters(),
		auditLogger:  auditLogger,
		logger:       logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.RunTransport(ctx, &sdk.StdioTransport{})
}

// RunTransport serves over an arbitrary transport.
func (s *Server) RunTransport(ctx context.Context, t sdk.Transport) error {
	s.logger.Debug("mcp server starting", "root", s.root, "record", s.record)
	err := s.server.Run(ctx, t)
	s.logger.Debug("mcp server stopped", "error", err)
	return err
}

// Close releases the history store and the audit log.
func (s *Server) Close() error {
	err := s.store.Close()
	if auditErr := s.auditLogger.Close(); err == nil {
		err = auditErr
	}
	return err
}
