package sentryapi

import (
	"bytes"
	"encoding/json"
)

// Span is the normalized node in a trace tree. The backend returns traces
// in two shapes - a flat array of span objects, or a legacy envelope of
// nested transactions with dot-separated field names - and both decode
// into this one representation so the summarization code is written once.
type Span struct {
	EventID        string  `json:"event_id"`
	TransactionID  string  `json:"transaction_id"`
	ProjectID      int64   `json:"project_id"`
	ProjectSlug    string  `json:"project_slug"`
	ProfileID      string  `json:"profile_id"`
	ProfilerID     string  `json:"profiler_id"`
	ParentSpanID   string  `json:"parent_span_id"`
	StartTimestamp float64 `json:"start_timestamp"`
	EndTimestamp   float64 `json:"end_timestamp"`
	Duration       float64 `json:"duration"`
	Transaction    string  `json:"transaction"`
	IsTransaction  bool    `json:"is_transaction"`
	Description    string  `json:"description"`
	SDKName        string  `json:"sdk_name"`
	Op             string  `json:"op"`
	Name           string  `json:"name"`
	Children       []Span  `json:"children"`
	Errors         []Value `json:"errors"`
	Occurrences    []Value `json:"occurrences"`
}

// OrphanError is an error event attached to the trace but not to any span.
type OrphanError struct {
	IssueID     int64  `json:"issue_id"`
	EventID     string `json:"event_id"`
	Title       string `json:"title"`
	Level       string `json:"level"`
	ProjectSlug string `json:"project_slug"`
}

// TraceResponse is the decoded trace payload: the root spans plus any
// orphan errors the envelope shape carries.
type TraceResponse struct {
	Spans        []Span
	OrphanErrors []OrphanError
}

// legacyTransaction is the older nested envelope node. Its operation and
// duration arrive under dot-separated keys, and every node is a
// transaction boundary.
type legacyTransaction struct {
	EventID           string              `json:"event_id"`
	ProjectID         int64               `json:"project_id"`
	ProjectSlug       string              `json:"project_slug"`
	Transaction       string              `json:"transaction"`
	StartTimestamp    float64             `json:"start_timestamp"`
	Timestamp         float64             `json:"timestamp"`
	SDKName           string              `json:"sdk_name"`
	SpanID            string              `json:"span_id"`
	ParentSpanID      string              `json:"parent_span_id"`
	Children          []legacyTransaction `json:"children"`
	Errors            []Value             `json:"errors"`
	PerformanceIssues []Value             `json:"performance_issues"`
	Op                string              `json:"transaction.op"`
	DurationMS        *float64            `json:"transaction.duration"`
	Description       string              `json:"span_description"`
	Status            string              `json:"span_status"`
}

type legacyEnvelope struct {
	Transactions []legacyTransaction `json:"transactions"`
	OrphanErrors []OrphanError       `json:"orphan_errors"`
}

func (t *TraceResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var spans []Span
		if err := json.Unmarshal(data, &spans); err != nil {
			return err
		}
		t.Spans = spans
		t.OrphanErrors = nil
		return nil
	}

	var env legacyEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	t.Spans = make([]Span, 0, len(env.Transactions))
	for _, tx := range env.Transactions {
		t.Spans = append(t.Spans, tx.toSpan())
	}
	t.OrphanErrors = env.OrphanErrors
	return nil
}

func (t legacyTransaction) toSpan() Span {
	duration := (t.Timestamp - t.StartTimestamp) * 1000
	if t.DurationMS != nil {
		duration = *t.DurationMS
	}
	if duration < 0 {
		duration = 0
	}
	children := make([]Span, 0, len(t.Children))
	for _, child := range t.Children {
		children = append(children, child.toSpan())
	}
	return Span{
		EventID:        t.EventID,
		ProjectID:      t.ProjectID,
		ProjectSlug:    t.ProjectSlug,
		ParentSpanID:   t.ParentSpanID,
		StartTimestamp: t.StartTimestamp,
		EndTimestamp:   t.Timestamp,
		Duration:       duration,
		Transaction:    t.Transaction,
		IsTransaction:  true,
		Description:    t.Description,
		SDKName:        t.SDKName,
		Op:             t.Op,
		Children:       children,
		Errors:         t.Errors,
	}
}
