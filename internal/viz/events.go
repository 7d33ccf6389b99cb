package viz

import (
	"fmt"
	"strings"

	"github.com/utapyngo/sentry-mcp/internal/sentryapi"
)

// FormatEventsReport renders the result of an issue event search: one
// block per matching event with its tags and any embedded exceptions.
func FormatEventsReport(issueID, query string, events []sentryapi.Event) string {
	var b strings.Builder

	b.WriteString("# Issue Events\n\n")
	fmt.Fprintf(&b, "**Issue:** %s\n", issueID)
	if query != "" {
		fmt.Fprintf(&b, "**Query:** %s\n", query)
	}
	fmt.Fprintf(&b, "**Found:** %d events\n\n", len(events))

	for i, event := range events {
		fmt.Fprintf(&b, "## Event %d - %s\n\n", i+1, event.EventID)
		writeField(&b, "Date", event.DateCreated)
		writeField(&b, "Platform", event.Platform)
		writeField(&b, "Message", event.Message)

		if len(event.Tags) > 0 {
			b.WriteString("**Tags:** ")
			tags := make([]string, len(event.Tags))
			for j, tag := range event.Tags {
				tags[j] = tag.Key + "=" + tag.Value
			}
			b.WriteString(strings.Join(tags, ", "))
			b.WriteByte('\n')
		}

		for _, entry := range event.Entries {
			if entry.Type != "exception" {
				continue
			}
			values, ok := entry.Data.Field("values")
			if !ok || values.Kind != sentryapi.KindArray {
				continue
			}
			for _, exc := range values.Arr {
				excType := fieldString(exc, "type", "?")
				excValue := fieldString(exc, "value", "?")
				fmt.Fprintf(&b, "**Exception:** %s - %s\n", excType, excValue)
			}
		}
		b.WriteByte('\n')
	}

	if len(events) == 0 {
		b.WriteString("No events found matching the query.\n")
	}

	return b.String()
}
