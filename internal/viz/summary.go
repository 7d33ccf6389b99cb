package viz

import (
	"math"
	"sort"

	"github.com/utapyngo/sentry-mcp/internal/sentryapi"
)

const (
	// minInterestingDurationMS is the floor below which a plain span is
	// omitted from the interesting-span view.
	minInterestingDurationMS = 10.0
	// maxInterestingSpans bounds the interesting-span view.
	maxInterestingSpans = 20
	// dominatedThreshold marks a span as a pass-through wrapper when its
	// single child consumes at least this fraction of its duration.
	dominatedThreshold = 0.9
)

// OpStats accumulates the per-operation totals for one trace.
type OpStats struct {
	Count   int
	TotalMS float64
}

// CollectOperations walks the subtree pre-order and credits each node's
// own duration to its operation bucket. Nodes without an operation name
// are skipped, but their children are still visited.
func CollectOperations(span *sentryapi.Span, ops map[string]OpStats) {
	if span.Op != "" {
		stats := ops[span.Op]
		stats.Count++
		stats.TotalMS += span.Duration
		ops[span.Op] = stats
	}
	for i := range span.Children {
		CollectOperations(&span.Children[i], ops)
	}
}

// SelectInterestingSpans flattens the trees into a duration-descending
// list of at most maxSpans spans worth surfacing: transactions, spans
// with errors, and spans at or above the minimum duration. Non-transaction
// spans dominated by a single child are dropped as pass-through wrappers.
// Returned spans have their children cleared; the list is flat, not a tree.
func SelectInterestingSpans(spans []sentryapi.Span, maxSpans int) []sentryapi.Span {
	var collected []sentryapi.Span
	for i := range spans {
		collectInteresting(&spans[i], &collected)
	}
	// Stable sort keeps traversal order on equal durations.
	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].Duration > collected[j].Duration
	})
	if len(collected) > maxSpans {
		collected = collected[:maxSpans]
	}
	return collected
}

func collectInteresting(span *sentryapi.Span, out *[]sentryapi.Span) {
	dominatedByOneChild := len(span.Children) == 1 &&
		span.Children[0].Duration >= span.Duration*dominatedThreshold

	// Skip non-transaction spans that are dominated by a single child
	// (e.g. middleware chains where each middleware wraps the next).
	dominatedSkip := dominatedByOneChild && !span.IsTransaction

	interesting := span.IsTransaction ||
		len(span.Errors) > 0 ||
		span.Duration >= minInterestingDurationMS

	if !dominatedSkip && interesting {
		flat := *span
		flat.Children = nil
		*out = append(*out, flat)
	}

	for i := range span.Children {
		collectInteresting(&span.Children[i], out)
	}
}

// CountTransactions counts transaction boundaries across all subtrees.
func CountTransactions(spans []sentryapi.Span) int {
	count := 0
	for i := range spans {
		if spans[i].IsTransaction {
			count++
		}
		count += CountTransactions(spans[i].Children)
	}
	return count
}

// computeTimeRange scans every node for the earliest start and latest end
// timestamp, ignoring zero sentinels so spans without timing data cannot
// corrupt the range. When nothing qualifies the returned range is inverted
// (min > max), which callers treat as "no wall-clock data".
func computeTimeRange(spans []sentryapi.Span) (minStart, maxEnd float64) {
	minStart = math.MaxFloat64
	maxEnd = -math.MaxFloat64
	for i := range spans {
		s := &spans[i]
		if s.StartTimestamp > 0 && s.StartTimestamp < minStart {
			minStart = s.StartTimestamp
		}
		if s.EndTimestamp > 0 && s.EndTimestamp > maxEnd {
			maxEnd = s.EndTimestamp
		}
		childStart, childEnd := computeTimeRange(s.Children)
		if childStart < minStart {
			minStart = childStart
		}
		if childEnd > maxEnd {
			maxEnd = childEnd
		}
	}
	return minStart, maxEnd
}
