package viz

import (
	"testing"

	"github.com/utapyngo/sentry-mcp/internal/sentryapi"
)

func TestCollectOperations(t *testing.T) {
	root := sentryapi.Span{
		Op:       "http.server",
		Duration: 100,
		Children: []sentryapi.Span{
			{Op: "db", Duration: 30},
			{Op: "db", Duration: 20},
			{
				// No op name; the node is skipped but its child is not.
				Duration: 40,
				Children: []sentryapi.Span{
					{Op: "cache.get", Duration: 5},
				},
			},
		},
	}

	ops := make(map[string]OpStats)
	CollectOperations(&root, ops)

	if len(ops) != 3 {
		t.Fatalf("expected 3 operations, got %d: %v", len(ops), ops)
	}
	if ops["db"].Count != 2 || ops["db"].TotalMS != 50 {
		t.Errorf("db stats = %+v, want {2 50}", ops["db"])
	}
	if ops["http.server"].Count != 1 || ops["http.server"].TotalMS != 100 {
		t.Errorf("http.server stats = %+v", ops["http.server"])
	}
	if ops["cache.get"].Count != 1 {
		t.Errorf("cache.get stats = %+v", ops["cache.get"])
	}
}

func TestSelectInterestingSpansFiltersShort(t *testing.T) {
	spans := []sentryapi.Span{
		{Op: "a", Duration: 50},
		{Op: "b", Duration: 5},
		{Op: "c", Duration: 10},
	}

	got := SelectInterestingSpans(spans, maxInterestingSpans)

	if len(got) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(got))
	}
	if got[0].Op != "a" || got[1].Op != "c" {
		t.Errorf("got ops %q, %q; want a, c", got[0].Op, got[1].Op)
	}
}

func TestSelectInterestingSpansKeepsShortTransactionsAndErrors(t *testing.T) {
	spans := []sentryapi.Span{
		{Op: "tx", Duration: 1, IsTransaction: true},
		{Op: "err", Duration: 2, Errors: []sentryapi.Value{{Kind: sentryapi.KindObject}}},
		{Op: "boring", Duration: 3},
	}

	got := SelectInterestingSpans(spans, maxInterestingSpans)

	if len(got) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(got))
	}
	// Duration descending.
	if got[0].Op != "err" || got[1].Op != "tx" {
		t.Errorf("got ops %q, %q; want err, tx", got[0].Op, got[1].Op)
	}
}

func TestSelectInterestingSpansDominatedWrapper(t *testing.T) {
	// A middleware span whose single child takes 95% of its time is a
	// pass-through wrapper and should be suppressed.
	spans := []sentryapi.Span{
		{
			Op:       "middleware",
			Duration: 100,
			Children: []sentryapi.Span{
				{Op: "handler", Duration: 95},
			},
		},
	}

	got := SelectInterestingSpans(spans, maxInterestingSpans)

	if len(got) != 1 {
		t.Fatalf("expected 1 span, got %d", len(got))
	}
	if got[0].Op != "handler" {
		t.Errorf("got op %q, want handler", got[0].Op)
	}
}

func TestSelectInterestingSpansDominatedTransactionKept(t *testing.T) {
	spans := []sentryapi.Span{
		{
			Op:            "http.server",
			Duration:      100,
			IsTransaction: true,
			Children: []sentryapi.Span{
				{Op: "handler", Duration: 99},
			},
		},
	}

	got := SelectInterestingSpans(spans, maxInterestingSpans)

	if len(got) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(got))
	}
	if got[0].Op != "http.server" {
		t.Errorf("transaction should rank first, got %q", got[0].Op)
	}
}

func TestSelectInterestingSpansLimit(t *testing.T) {
	var spans []sentryapi.Span
	for i := 0; i < 30; i++ {
		spans = append(spans, sentryapi.Span{Op: "op", Duration: float64(100 + i)})
	}

	got := SelectInterestingSpans(spans, maxInterestingSpans)

	if len(got) != maxInterestingSpans {
		t.Fatalf("expected %d spans, got %d", maxInterestingSpans, len(got))
	}
	if got[0].Duration != 129 {
		t.Errorf("longest span should rank first, got %v", got[0].Duration)
	}
}

func TestSelectInterestingSpansChildrenCleared(t *testing.T) {
	spans := []sentryapi.Span{
		{
			Op:       "parent",
			Duration: 100,
			Children: []sentryapi.Span{
				{Op: "child", Duration: 50},
				{Op: "child", Duration: 40},
			},
		},
	}

	got := SelectInterestingSpans(spans, maxInterestingSpans)

	for i := range got {
		if got[i].Children != nil {
			t.Errorf("span %q should have no children in flat view", got[i].Op)
		}
	}
	// Parent with two children is not dominated, so all three survive.
	if len(got) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(got))
	}
}

func TestCountTransactions(t *testing.T) {
	spans := []sentryapi.Span{
		{
			IsTransaction: true,
			Children: []sentryapi.Span{
				{IsTransaction: false},
				{IsTransaction: true},
			},
		},
		{IsTransaction: true},
	}

	if got := CountTransactions(spans); got != 3 {
		t.Errorf("CountTransactions = %d, want 3", got)
	}
}

func TestComputeTimeRangeSkipsZeroSentinels(t *testing.T) {
	spans := []sentryapi.Span{
		{StartTimestamp: 100.0, EndTimestamp: 0},
		{
			StartTimestamp: 0,
			EndTimestamp:   0,
			Children: []sentryapi.Span{
				{StartTimestamp: 101.0, EndTimestamp: 103.5},
			},
		},
	}

	minStart, maxEnd := computeTimeRange(spans)
	if minStart != 100.0 {
		t.Errorf("minStart = %v, want 100.0", minStart)
	}
	if maxEnd != 103.5 {
		t.Errorf("maxEnd = %v, want 103.5", maxEnd)
	}
}

func TestComputeTimeRangeEmptyIsInverted(t *testing.T) {
	minStart, maxEnd := computeTimeRange([]sentryapi.Span{{}})
	if minStart <= maxEnd {
		t.Errorf("expected inverted range without timestamps, got min=%v max=%v", minStart, maxEnd)
	}
}
