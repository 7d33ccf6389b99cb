package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/utapyngo/sentry-mcp/internal/sentryapi"
)

// maxOrphanErrors caps the orphan-error list in the trace report.
const maxOrphanErrors = 5

// FormatTraceReport assembles the full Markdown report for one trace:
// identification header, transaction count, server-side aggregate figures
// when available, wall-clock duration, operation breakdown, the ranked
// interesting-span view, and any orphan errors.
func FormatTraceReport(traceID string, trace *sentryapi.TraceResponse, meta *sentryapi.TraceMeta) string {
	var b strings.Builder

	b.WriteString("# Trace Details\n\n")
	fmt.Fprintf(&b, "**Trace ID:** %s\n", traceID)
	fmt.Fprintf(&b, "**Transactions:** %d\n", CountTransactions(trace.Spans))

	if meta != nil {
		fmt.Fprintf(&b, "**Total Spans:** %d\n", int64(meta.SpanCount))
		fmt.Fprintf(&b, "**Errors:** %d\n", meta.Errors)
		fmt.Fprintf(&b, "**Performance Issues:** %d\n", meta.PerformanceIssues)
	}

	if len(trace.Spans) > 0 {
		minStart, maxEnd := computeTimeRange(trace.Spans)
		totalMS := (maxEnd - minStart) * 1000
		if totalMS > 0 {
			fmt.Fprintf(&b, "**Total Duration:** %s\n", FormatDuration(totalMS))
		} else {
			// No usable timestamps anywhere in the tree; fall back to the
			// first root's own duration and label it as such.
			fmt.Fprintf(&b, "**Root Duration:** %s\n", FormatDuration(trace.Spans[0].Duration))
		}
	}

	writeOperationBreakdown(&b, trace.Spans, meta)

	interesting := SelectInterestingSpans(trace.Spans, maxInterestingSpans)
	b.WriteString("\n## Span Tree\n\n```\n")
	for i := range interesting {
		FormatSpanTree(&b, &interesting[i], 0)
	}
	b.WriteString("```\n")

	writeOrphanErrors(&b, trace.OrphanErrors)

	return b.String()
}

// writeOperationBreakdown prefers the server-computed operation map, which
// covers the full unfiltered trace; the local aggregate only sees the
// payload actually returned.
func writeOperationBreakdown(b *strings.Builder, spans []sentryapi.Span, meta *sentryapi.TraceMeta) {
	if meta != nil && len(meta.SpanCountMap) > 0 {
		b.WriteString("\n## Operation Breakdown\n\n")
		type opTotal struct {
			op    string
			total float64
		}
		totals := make([]opTotal, 0, len(meta.SpanCountMap))
		for op, total := range meta.SpanCountMap {
			totals = append(totals, opTotal{op, total})
		}
		sort.Slice(totals, func(i, j int) bool {
			if totals[i].total != totals[j].total {
				return totals[i].total > totals[j].total
			}
			return totals[i].op < totals[j].op
		})
		for _, t := range totals {
			fmt.Fprintf(b, "- **%s**: %d\n", t.op, int64(t.total))
		}
		return
	}

	ops := make(map[string]OpStats)
	for i := range spans {
		CollectOperations(&spans[i], ops)
	}
	if len(ops) == 0 {
		return
	}
	b.WriteString("\n## Operation Breakdown\n\n")
	type opEntry struct {
		op    string
		stats OpStats
	}
	entries := make([]opEntry, 0, len(ops))
	for op, stats := range ops {
		entries = append(entries, opEntry{op, stats})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].stats.TotalMS != entries[j].stats.TotalMS {
			return entries[i].stats.TotalMS > entries[j].stats.TotalMS
		}
		return entries[i].op < entries[j].op
	})
	for _, e := range entries {
		fmt.Fprintf(b, "- **%s**: %d occurrences, %s total\n",
			e.op, e.stats.Count, FormatDuration(e.stats.TotalMS))
	}
}

func writeOrphanErrors(b *strings.Builder, orphans []sentryapi.OrphanError) {
	if len(orphans) == 0 {
		return
	}
	b.WriteString("\n## Orphan Errors\n\n")
	shown := orphans
	if len(shown) > maxOrphanErrors {
		shown = shown[:maxOrphanErrors]
	}
	for i, oe := range shown {
		title := oe.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(b, "%d. %s (%s)\n", i+1, title, oe.ProjectSlug)
	}
}
