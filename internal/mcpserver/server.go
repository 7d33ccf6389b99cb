package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/utapyngo/sentry-mcp/internal/sentryapi"
)

// SentryAPI is the backend surface the tools need. *sentryapi.Client
// satisfies it; tests substitute a mock.
type SentryAPI interface {
	GetIssue(ctx context.Context, orgSlug, issueID string) (*sentryapi.Issue, error)
	GetLatestEvent(ctx context.Context, orgSlug, issueID string) (*sentryapi.Event, error)
	GetEvent(ctx context.Context, orgSlug, issueID, eventID string) (*sentryapi.Event, error)
	GetTrace(ctx context.Context, orgSlug, traceID string) (*sentryapi.TraceResponse, error)
	GetTraceMeta(ctx context.Context, orgSlug, traceID string) (*sentryapi.TraceMeta, error)
	ListIssueEvents(ctx context.Context, orgSlug, issueID string, q sentryapi.EventsQuery) ([]sentryapi.Event, error)
}

// Server wraps the MCP server with the backend API client. Each tool call
// is independent and stateless; nothing is shared across invocations
// besides the client handle.
type Server struct {
	mcpServer *mcp.Server
	client    SentryAPI
	logger    *zap.Logger
}

// NewServer creates an MCP server exposing the three read-only tools.
func NewServer(client SentryAPI, logger *zap.Logger) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("api client cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		client: client,
		logger: logger,
	}

	s.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    "sentry-mcp",
		Title:   "Sentry issue and trace inspection",
		Version: "0.2.0",
	}, &mcp.ServerOptions{
		Instructions: `Read-only Sentry access. Three tools:
get_issue_details (issue metadata, tags, stack traces), get_trace_details
(span tree, timing breakdown), search_issue_events (query-filtered event
list). All output is Markdown.`,
	})

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. It blocks until the
// context is cancelled or stdin reaches EOF.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for alternative transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
