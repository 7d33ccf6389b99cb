package viz

import (
	"fmt"
	"strings"

	"github.com/utapyngo/sentry-mcp/internal/sentryapi"
)

// FormatDuration renders a millisecond value for display. Values of one
// second and above switch to seconds; the boundary is exactly 1000ms.
func FormatDuration(ms float64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.2fs", ms/1000)
	}
	return fmt.Sprintf("%.2fms", ms)
}

// FormatSpanTree writes one span and its subtree as an indented block,
// two spaces per depth level. Children render in payload order. Each line
// carries a status glyph, the operation, a description (falling back to
// the transaction name), the duration, the project slug, and a [tx]
// marker on transaction boundaries.
func FormatSpanTree(b *strings.Builder, span *sentryapi.Span, depth int) {
	indent := strings.Repeat("  ", depth)

	op := span.Op
	if op == "" {
		op = "unknown"
	}
	desc := span.Description
	if desc == "" {
		desc = span.Transaction
	}
	if desc == "" {
		desc = "(no description)"
	}
	icon := "✓"
	if len(span.Errors) > 0 {
		icon = "✗"
	}
	txMarker := ""
	if span.IsTransaction {
		txMarker = " [tx]"
	}

	fmt.Fprintf(b, "%s%s [%s] %s (%s) %s%s\n",
		indent, icon, op, desc, FormatDuration(span.Duration), span.ProjectSlug, txMarker)

	for i := range span.Children {
		FormatSpanTree(b, &span.Children[i], depth+1)
	}
}
