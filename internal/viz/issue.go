package viz

import (
	"fmt"
	"strings"

	"github.com/utapyngo/sentry-mcp/internal/sentryapi"
)

const (
	// Variable values longer than maxVarDisplayRunes render as the first
	// truncatedVarRunes runes plus an ellipsis.
	maxVarDisplayRunes = 60
	truncatedVarRunes  = 57

	maxStacktraceFrames = 20
)

// FormatIssueReport renders the issue metadata, its tags, and one event
// (the latest, or a specifically requested one) as Markdown.
func FormatIssueReport(issue *sentryapi.Issue, event *sentryapi.Event) string {
	var b strings.Builder

	b.WriteString("# Issue Details\n\n")
	fmt.Fprintf(&b, "**ID:** %s\n", issue.ShortID)
	fmt.Fprintf(&b, "**Title:** %s\n", issue.Title)
	fmt.Fprintf(&b, "**Status:** %s\n", issue.Status)
	writeField(&b, "Substatus", issue.Substatus)
	writeField(&b, "Issue Type", issue.IssueType)
	writeField(&b, "Issue Category", issue.IssueCategory)
	writeField(&b, "Level", issue.Level)
	writeField(&b, "Culprit", issue.Culprit)
	fmt.Fprintf(&b, "**Project:** %s (%s)\n", issue.Project.Name, issue.Project.Slug)
	writeField(&b, "Platform", issue.Platform)
	writeField(&b, "First Seen", issue.FirstSeen)
	writeField(&b, "Last Seen", issue.LastSeen)
	fmt.Fprintf(&b, "**Event Count:** %s\n", issue.Count)
	fmt.Fprintf(&b, "**User Count:** %d\n", issue.UserCount)
	writeField(&b, "URL", issue.Permalink)

	if len(issue.Tags) > 0 {
		b.WriteString("\n## Tags\n")
		for _, tag := range issue.Tags {
			fmt.Fprintf(&b, "- **%s:** %s (%d events)\n", tag.Key, tag.Name, tag.TotalValues)
		}
	}

	b.WriteString("\n## Latest Event\n\n")
	fmt.Fprintf(&b, "**Event ID:** %s\n", event.EventID)
	writeField(&b, "Date", event.DateCreated)
	writeField(&b, "Message", event.Message)

	formatEventEntries(&b, event.Entries)

	if len(event.Tags) > 0 {
		b.WriteString("\n### Event Tags\n")
		for _, tag := range event.Tags {
			fmt.Fprintf(&b, "**%s:** %s\n", tag.Key, tag.Value)
		}
	}

	if event.Context.Kind == sentryapi.KindObject && len(event.Context.Obj) > 0 {
		formatExtraData(&b, event.Context)
	}
	if event.Contexts.Kind == sentryapi.KindObject && len(event.Contexts.Obj) > 0 {
		formatContexts(&b, event.Contexts)
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "**%s:** %s\n", label, value)
	}
}

// formatEventEntries renders the typed entry sections of an event.
// Exception entries expand to full stack traces; message entries print the
// formatted text; every other entry type is ignored.
func formatEventEntries(b *strings.Builder, entries []sentryapi.EventEntry) {
	for _, entry := range entries {
		switch entry.Type {
		case "exception":
			if values, ok := entry.Data.Field("values"); ok && values.Kind == sentryapi.KindArray {
				for _, exc := range values.Arr {
					formatException(b, exc)
				}
			}
		case "message":
			if msg, ok := entry.Data.Field("formatted"); ok && msg.Kind == sentryapi.KindString {
				fmt.Fprintf(b, "\n### Message\n%s\n", msg.Str)
			}
		}
	}
}

func formatException(b *strings.Builder, exc sentryapi.Value) {
	excType := fieldString(exc, "type", "Error")
	excValue := fieldString(exc, "value", "")
	fmt.Fprintf(b, "\n### %s: %s\n", excType, excValue)

	stacktrace, ok := exc.Field("stacktrace")
	if !ok {
		return
	}
	framesVal, ok := stacktrace.Field("frames")
	if !ok || framesVal.Kind != sentryapi.KindArray {
		return
	}
	frames := framesVal.Arr

	// Frames arrive outermost-first; the most relevant frame is the
	// innermost one belonging to application code.
	for i := len(frames) - 1; i >= 0; i-- {
		inApp, _ := frames[i].Field("inApp")
		if inApp.BoolOr(false) {
			b.WriteString("\n**Most Relevant Frame:**\n")
			formatFrameDetail(b, frames[i])
			break
		}
	}

	b.WriteString("\n**Full Stacktrace:**\n────────────────\n```\n")
	shown := 0
	for i := len(frames) - 1; i >= 0 && shown < maxStacktraceFrames; i-- {
		frame := frames[i]
		filename := fieldString(frame, "filename", "?")
		lineNo := fieldInt(frame, "lineNo")
		function := fieldString(frame, "function", "?")
		fmt.Fprintf(b, "  File \"%s\", line %d, in %s\n", filename, lineNo, function)
		if line := contextLineAt(frame, lineNo); line != "" {
			fmt.Fprintf(b, "        %s\n", strings.TrimSpace(line))
		}
		shown++
	}
	b.WriteString("```\n")
}

// formatFrameDetail renders one stack frame with its surrounding source
// context (the faulting line marked with an arrow) and local variables.
func formatFrameDetail(b *strings.Builder, frame sentryapi.Value) {
	filename := fieldString(frame, "filename", "?")
	lineNo := fieldInt(frame, "lineNo")
	function := fieldString(frame, "function", "?")
	fmt.Fprintf(b, "─────────────────────\n  File \"%s\", line %d, in %s\n\n", filename, lineNo, function)

	if context, ok := frame.Field("context"); ok && context.Kind == sentryapi.KindArray {
		for _, line := range context.Arr {
			if line.Kind != sentryapi.KindArray || len(line.Arr) < 2 {
				continue
			}
			num := line.Arr[0].IntOr(0)
			code := line.Arr[1].StringOr("")
			marker := "    "
			if num == lineNo {
				marker = "  → "
			}
			fmt.Fprintf(b, "%s%d │%s\n", marker, num, code)
		}
	}

	vars, ok := frame.Field("vars")
	if !ok || vars.Kind != sentryapi.KindObject || len(vars.Obj) == 0 {
		return
	}
	b.WriteString("\nLocal Variables:\n")
	for _, key := range vars.Keys() {
		fmt.Fprintf(b, "├─ %s: %s\n", key, truncateVar(renderVar(vars.Obj[key])))
	}
}

// renderVar renders a local-variable value: strings quoted, null as the
// runtime's nil placeholder, everything else as compact JSON.
func renderVar(v sentryapi.Value) string {
	switch v.Kind {
	case sentryapi.KindString:
		return "\"" + v.Str + "\""
	case sentryapi.KindNull:
		return "None"
	default:
		return v.JSON()
	}
}

func truncateVar(s string) string {
	runes := []rune(s)
	if len(runes) <= maxVarDisplayRunes {
		return s
	}
	return string(runes[:truncatedVarRunes]) + "..."
}

// formatExtraData renders the event's free-form extra data block.
func formatExtraData(b *strings.Builder, extra sentryapi.Value) {
	b.WriteString("\n### Extra Data\n")
	for _, key := range extra.Keys() {
		val := extra.Obj[key]
		var rendered string
		switch val.Kind {
		case sentryapi.KindString:
			rendered = "\"" + val.Str + "\""
		case sentryapi.KindArray:
			items := make([]string, len(val.Arr))
			for i, item := range val.Arr {
				if item.Kind == sentryapi.KindString {
					items[i] = "\"" + item.Str + "\""
				} else {
					items[i] = item.JSON()
				}
			}
			rendered = "[" + strings.Join(items, ", ") + "]"
		default:
			rendered = val.JSON()
		}
		fmt.Fprintf(b, "**%s:** %s\n", key, rendered)
	}
}

// formatContexts renders the structured context blocks (browser, os,
// runtime, ...). Non-object entries are skipped.
func formatContexts(b *strings.Builder, contexts sentryapi.Value) {
	b.WriteString("\n### Context\n")
	for _, key := range contexts.Keys() {
		val := contexts.Obj[key]
		if val.Kind != sentryapi.KindObject {
			continue
		}
		fmt.Fprintf(b, "**%s:**\n", key)
		for _, k := range val.Keys() {
			v := val.Obj[k]
			if v.Kind == sentryapi.KindString {
				fmt.Fprintf(b, "  %s: %s\n", k, v.Str)
			} else {
				fmt.Fprintf(b, "  %s: %s\n", k, v.JSON())
			}
		}
	}
}

func fieldString(v sentryapi.Value, key, def string) string {
	f, ok := v.Field(key)
	if !ok {
		return def
	}
	return f.StringOr(def)
}

func fieldInt(v sentryapi.Value, key string) int64 {
	f, _ := v.Field(key)
	return f.IntOr(0)
}

// contextLineAt finds the source text for the given line number in a
// frame's context array of [lineNo, text] pairs.
func contextLineAt(frame sentryapi.Value, lineNo int64) string {
	context, ok := frame.Field("context")
	if !ok || context.Kind != sentryapi.KindArray {
		return ""
	}
	for _, line := range context.Arr {
		if line.Kind != sentryapi.KindArray || len(line.Arr) < 2 {
			continue
		}
		if line.Arr[0].IntOr(-1) == lineNo {
			return line.Arr[1].StringOr("")
		}
	}
	return ""
}
