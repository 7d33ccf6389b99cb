package sentryapi

import (
	"encoding/json"
	"testing"
)

func TestSpanDecodeMinimal(t *testing.T) {
	data := []byte(`{
		"event_id": "abc123",
		"project_id": 1,
		"project_slug": "proj",
		"parent_span_id": null,
		"start_timestamp": 1000.0,
		"duration": 100.0
	}`)

	var span Span
	if err := json.Unmarshal(data, &span); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if span.EventID != "abc123" {
		t.Errorf("expected event_id abc123, got %q", span.EventID)
	}
	if span.ProjectSlug != "proj" {
		t.Errorf("expected project_slug proj, got %q", span.ProjectSlug)
	}
	if span.IsTransaction {
		t.Error("expected is_transaction false by default")
	}
	if len(span.Children) != 0 {
		t.Errorf("expected no children, got %d", len(span.Children))
	}
}

func TestSpanDecodeFull(t *testing.T) {
	data := []byte(`{
		"event_id": "91958dc2ae005f54",
		"transaction_id": "4ff9a0a8138a447c9e0572a2eeff55d8",
		"project_id": 19,
		"project_slug": "platform_test_project",
		"parent_span_id": "91958dc2ae005f54",
		"start_timestamp": 1771164551.506854,
		"end_timestamp": 1771164551.506973,
		"duration": 326.0,
		"transaction": "/api/resource/{id}/",
		"is_transaction": true,
		"description": "/api/resource/{id}/",
		"sdk_name": "sentry.python.django",
		"op": "http.server",
		"name": "http.server",
		"children": [],
		"errors": [],
		"occurrences": []
	}`)

	var span Span
	if err := json.Unmarshal(data, &span); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !span.IsTransaction {
		t.Error("expected is_transaction true")
	}
	if span.Op != "http.server" {
		t.Errorf("expected op http.server, got %q", span.Op)
	}
	if span.Duration != 326.0 {
		t.Errorf("expected duration 326, got %v", span.Duration)
	}
	if span.SDKName != "sentry.python.django" {
		t.Errorf("expected sdk_name sentry.python.django, got %q", span.SDKName)
	}
}

func TestSpanDecodeNested(t *testing.T) {
	data := []byte(`{
		"event_id": "parent",
		"project_id": 1,
		"project_slug": "proj",
		"start_timestamp": 1000.0,
		"end_timestamp": 1001.0,
		"duration": 1000.0,
		"is_transaction": true,
		"op": "http.server",
		"children": [{
			"event_id": "child",
			"project_id": 1,
			"project_slug": "proj",
			"parent_span_id": "parent",
			"start_timestamp": 1000.1,
			"end_timestamp": 1000.5,
			"duration": 400.0,
			"op": "db",
			"children": []
		}]
	}`)

	var span Span
	if err := json.Unmarshal(data, &span); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(span.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(span.Children))
	}
	if span.Children[0].EventID != "child" || span.Children[0].Op != "db" {
		t.Errorf("child not decoded: %+v", span.Children[0])
	}
}

func TestTraceResponseFlatShape(t *testing.T) {
	data := []byte(`[
		{"event_id": "span1", "project_id": 1, "project_slug": "proj", "start_timestamp": 1000.0, "duration": 100.0, "is_transaction": true},
		{"event_id": "span2", "project_id": 1, "project_slug": "proj", "start_timestamp": 1001.0, "duration": 200.0}
	]`)

	var trace TraceResponse
	if err := json.Unmarshal(data, &trace); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(trace.Spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(trace.Spans))
	}
	if !trace.Spans[0].IsTransaction {
		t.Error("expected first span to be a transaction")
	}
	if trace.Spans[1].IsTransaction {
		t.Error("expected second span to not be a transaction")
	}
	if len(trace.OrphanErrors) != 0 {
		t.Errorf("flat shape has no orphan errors, got %d", len(trace.OrphanErrors))
	}
}

func TestTraceResponseLegacyShape(t *testing.T) {
	data := []byte(`{
		"transactions": [{
			"event_id": "tx1",
			"project_id": 1,
			"project_slug": "backend",
			"transaction": "GET /api",
			"start_timestamp": 1704067200.0,
			"timestamp": 1704067201.0,
			"transaction.op": "http.server",
			"transaction.duration": 1000.0,
			"children": [{
				"event_id": "tx2",
				"project_id": 2,
				"project_slug": "worker",
				"transaction": "process job",
				"start_timestamp": 1704067200.2,
				"timestamp": 1704067200.8,
				"transaction.op": "queue.task"
			}]
		}],
		"orphan_errors": [
			{"title": "TypeError: oops", "project_slug": "backend", "level": "error"}
		]
	}`)

	var trace TraceResponse
	if err := json.Unmarshal(data, &trace); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(trace.Spans) != 1 {
		t.Fatalf("expected 1 root span, got %d", len(trace.Spans))
	}
	root := trace.Spans[0]
	if !root.IsTransaction {
		t.Error("legacy transactions must normalize as transaction spans")
	}
	if root.Op != "http.server" {
		t.Errorf("dot-named op not mapped, got %q", root.Op)
	}
	if root.Duration != 1000.0 {
		t.Errorf("expected duration 1000, got %v", root.Duration)
	}
	if root.Transaction != "GET /api" {
		t.Errorf("expected transaction name, got %q", root.Transaction)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children))
	}
	child := root.Children[0]
	if child.Op != "queue.task" {
		t.Errorf("child op not mapped, got %q", child.Op)
	}
	// No explicit duration on the child: derived from timestamps.
	if child.Duration < 599.9 || child.Duration > 600.1 {
		t.Errorf("expected derived duration ~600ms, got %v", child.Duration)
	}
	if len(trace.OrphanErrors) != 1 {
		t.Fatalf("expected 1 orphan error, got %d", len(trace.OrphanErrors))
	}
	if trace.OrphanErrors[0].Title != "TypeError: oops" {
		t.Errorf("orphan title not decoded, got %q", trace.OrphanErrors[0].Title)
	}
}

func TestTraceMetaDecode(t *testing.T) {
	data := []byte(`{
		"logs": 0,
		"errors": 2,
		"performance_issues": 1,
		"span_count": 1122.0,
		"span_count_map": {
			"event.django": 730.0,
			"db": 184.0
		}
	}`)

	var meta TraceMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if meta.Errors != 2 || meta.PerformanceIssues != 1 {
		t.Errorf("counts not decoded: %+v", meta)
	}
	if meta.SpanCount != 1122.0 {
		t.Errorf("expected span_count 1122, got %v", meta.SpanCount)
	}
	if meta.SpanCountMap["db"] != 184.0 {
		t.Errorf("expected db total 184, got %v", meta.SpanCountMap["db"])
	}
}

func TestTraceMetaDecodeEmpty(t *testing.T) {
	var meta TraceMeta
	if err := json.Unmarshal([]byte(`{}`), &meta); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if meta.Errors != 0 || meta.SpanCount != 0 || len(meta.SpanCountMap) != 0 {
		t.Errorf("expected zero meta, got %+v", meta)
	}
}
