package mcpserver

import (
	"context"
	"fmt"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/utapyngo/sentry-mcp/internal/sentryapi"
	"github.com/utapyngo/sentry-mcp/internal/viz"
)

const (
	defaultEventSearchLimit = 10
	maxEventSearchLimit     = 100
)

var issueURLPattern = regexp.MustCompile(`https?://[^/]+/organizations/([^/]+)/issues/([^/?]+)`)

// parseIssueURL extracts the organization slug and issue id from a full
// issue URL. Returns ok=false when the URL does not match.
func parseIssueURL(url string) (orgSlug, issueID string, ok bool) {
	m := issueURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Tool 1: get_issue_details

type GetIssueDetailsInput struct {
	IssueURL         string `json:"issue_url,omitempty" jsonschema:"Full Sentry issue URL"`
	OrganizationSlug string `json:"organization_slug,omitempty" jsonschema:"Organization slug (required if issue_url not provided)"`
	IssueID          string `json:"issue_id,omitempty" jsonschema:"Issue ID like 'PROJECT-123' or numeric ID (required if issue_url not provided)"`
	EventID          string `json:"event_id,omitempty" jsonschema:"Specific event ID to fetch instead of latest"`
}

type ReportOutput struct {
	Report string `json:"report" jsonschema:"Markdown report"`
}

func (s *Server) handleGetIssueDetails(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetIssueDetailsInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	s.logger.Info("get_issue_details",
		zap.String("issue_url", input.IssueURL),
		zap.String("organization_slug", input.OrganizationSlug),
		zap.String("issue_id", input.IssueID),
		zap.String("event_id", input.EventID))

	var orgSlug, issueID string
	if input.IssueURL != "" {
		var ok bool
		orgSlug, issueID, ok = parseIssueURL(input.IssueURL)
		if !ok {
			return nil, ReportOutput{}, fmt.Errorf("invalid issue URL format")
		}
	} else {
		if input.OrganizationSlug == "" || input.IssueID == "" {
			return nil, ReportOutput{}, fmt.Errorf("either issue_url or organization_slug + issue_id required")
		}
		orgSlug, issueID = input.OrganizationSlug, input.IssueID
	}

	issue, err := s.client.GetIssue(ctx, orgSlug, issueID)
	if err != nil {
		return nil, ReportOutput{}, err
	}

	var event *sentryapi.Event
	if input.EventID != "" {
		event, err = s.client.GetEvent(ctx, orgSlug, issueID, input.EventID)
	} else {
		event, err = s.client.GetLatestEvent(ctx, orgSlug, issueID)
	}
	if err != nil {
		return nil, ReportOutput{}, err
	}

	report := viz.FormatIssueReport(issue, event)
	return textResult(report), ReportOutput{Report: report}, nil
}

// Tool 2: get_trace_details

type GetTraceDetailsInput struct {
	OrganizationSlug string `json:"organization_slug" jsonschema:"Organization slug"`
	TraceID          string `json:"trace_id" jsonschema:"Trace ID (32-character hex string)"`
}

func (s *Server) handleGetTraceDetails(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetTraceDetailsInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	s.logger.Info("get_trace_details",
		zap.String("organization_slug", input.OrganizationSlug),
		zap.String("trace_id", input.TraceID))

	if input.OrganizationSlug == "" || input.TraceID == "" {
		return nil, ReportOutput{}, fmt.Errorf("organization_slug and trace_id are required")
	}

	trace, err := s.client.GetTrace(ctx, input.OrganizationSlug, input.TraceID)
	if err != nil {
		return nil, ReportOutput{}, err
	}

	// The aggregate metadata fetch is best-effort; a missing or failing
	// endpoint degrades to the locally computed breakdown.
	meta, err := s.client.GetTraceMeta(ctx, input.OrganizationSlug, input.TraceID)
	if err != nil {
		s.logger.Debug("trace meta unavailable", zap.Error(err))
		meta = nil
	}

	report := viz.FormatTraceReport(input.TraceID, trace, meta)
	return textResult(report), ReportOutput{Report: report}, nil
}

// Tool 3: search_issue_events

type SearchIssueEventsInput struct {
	OrganizationSlug string `json:"organization_slug" jsonschema:"Organization slug"`
	IssueID          string `json:"issue_id" jsonschema:"Issue ID like 'PROJECT-123' or numeric ID"`
	Query            string `json:"query,omitempty" jsonschema:"Sentry search query. Syntax: key:value pairs with optional raw text. Operators: > < >= <= for numbers, ! for negation, * for wildcard, OR/AND for logic. Event properties: environment, release, platform, message, user.id, user.email, device.family, browser.name, os.name, server_name, transaction. Examples: 'server_name:web-1', 'environment:production'"`
	Limit            int    `json:"limit,omitempty" jsonschema:"Maximum number of events to return (default: 10, max: 100)"`
	Sort             string `json:"sort,omitempty" jsonschema:"Sort order: 'newest' (default) or 'oldest'"`
}

func (s *Server) handleSearchIssueEvents(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchIssueEventsInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	s.logger.Info("search_issue_events",
		zap.String("organization_slug", input.OrganizationSlug),
		zap.String("issue_id", input.IssueID),
		zap.String("query", input.Query),
		zap.Int("limit", input.Limit))

	if input.OrganizationSlug == "" || input.IssueID == "" {
		return nil, ReportOutput{}, fmt.Errorf("organization_slug and issue_id are required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultEventSearchLimit
	}
	if limit > maxEventSearchLimit {
		limit = maxEventSearchLimit
	}
	sortOrder := input.Sort
	if sortOrder == "" {
		sortOrder = "newest"
	}

	events, err := s.client.ListIssueEvents(ctx, input.OrganizationSlug, input.IssueID, sentryapi.EventsQuery{
		Query: input.Query,
		Limit: limit,
		Sort:  sortOrder,
	})
	if err != nil {
		return nil, ReportOutput{}, err
	}

	report := viz.FormatEventsReport(input.IssueID, input.Query, events)
	return textResult(report), ReportOutput{Report: report}, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// Register all tools

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_issue_details",
		Description: "Retrieve detailed information about a specific Sentry issue including metadata, tags, and optionally an event. Accepts either an issue_url OR (organization_slug + issue_id). Renders stack traces, local variables, extra data, and contexts as Markdown.",
	}, s.handleGetIssueDetails)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_trace_details",
		Description: "Retrieve trace details including span tree and timing information. Useful for analyzing distributed system performance. Shows transaction counts, an operation breakdown, and the slowest/most interesting spans.",
	}, s.handleGetTraceDetails)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_issue_events",
		Description: "Search events for a specific issue using a query string. Returns matching events with their tags and any embedded exceptions.",
	}, s.handleSearchIssueEvents)
}
