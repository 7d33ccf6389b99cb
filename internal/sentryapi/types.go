package sentryapi

import (
	"net/url"
	"strconv"
)

// Project is the owning project reference embedded in issues.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// IssueTag is an aggregated tag on an issue (key plus distinct value count).
type IssueTag struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	TotalValues int64  `json:"totalValues"`
}

// EventTag is a single key/value tag on one event.
type EventTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Issue is the detail payload for one tracked issue. Optional string
// fields are empty when the backend omits them.
type Issue struct {
	ID            string     `json:"id"`
	ShortID       string     `json:"shortId"`
	Title         string     `json:"title"`
	Culprit       string     `json:"culprit"`
	Status        string     `json:"status"`
	Substatus     string     `json:"substatus"`
	Level         string     `json:"level"`
	Platform      string     `json:"platform"`
	Project       Project    `json:"project"`
	FirstSeen     string     `json:"firstSeen"`
	LastSeen      string     `json:"lastSeen"`
	Count         string     `json:"count"`
	UserCount     int64      `json:"userCount"`
	Permalink     string     `json:"permalink"`
	Metadata      Value      `json:"metadata"`
	Tags          []IssueTag `json:"tags"`
	IssueType     string     `json:"issueType"`
	IssueCategory string     `json:"issueCategory"`
}

// EventEntry is one typed section of an event payload ("exception",
// "message", "breadcrumbs", ...). Data is schemaless per entry type.
type EventEntry struct {
	Type string `json:"type"`
	Data Value  `json:"data"`
}

// Event is a single captured event for an issue.
type Event struct {
	ID          string       `json:"id"`
	EventID     string       `json:"eventID"`
	DateCreated string       `json:"dateCreated"`
	Message     string       `json:"message"`
	Platform    string       `json:"platform"`
	Entries     []EventEntry `json:"entries"`
	Contexts    Value        `json:"contexts"`
	Context     Value        `json:"context"`
	Tags        []EventTag   `json:"tags"`
}

// TraceMeta is the server-side aggregate over a full trace. Because it is
// computed over the unfiltered trace it is preferred over any aggregate
// recomputed from the (possibly truncated) span payload.
type TraceMeta struct {
	Logs              int64              `json:"logs"`
	Errors            int64              `json:"errors"`
	PerformanceIssues int64              `json:"performance_issues"`
	SpanCount         float64            `json:"span_count"`
	SpanCountMap      map[string]float64 `json:"span_count_map"`
}

// EventsQuery carries the optional parameters for listing issue events.
type EventsQuery struct {
	Query string
	Limit int
	Sort  string
}

// Encode renders the query as a URL query string, omitting unset fields.
func (q EventsQuery) Encode() string {
	params := url.Values{}
	if q.Query != "" {
		params.Set("query", q.Query)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	return params.Encode()
}
