package report

import (
	"fmt"
	"strings"
)

// MarkdownExporter renders the report as markdown with clickable sources.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Extension() string { return "md" }

func (e *MarkdownExporter) Export(data Data) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Reddit Persona Report for u/%s\n\n", data.Username)
	if !data.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s from %d items (%d tokens)._\n\n",
			data.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), data.ItemsIncluded, data.ContextTokens)
	}

	if len(data.Warnings) > 0 {
		b.WriteString("> **Warnings**\n")
		for _, w := range data.Warnings {
			fmt.Fprintf(&b, "> - %s\n", w)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Executive Summary\n\n%s\n\n", data.ExecutiveSummary)
	fmt.Fprintf(&b, "## Comprehensive Persona\n\n%s\n\n", data.Persona)

	b.WriteString("## Source References\n\n")
	if len(data.References) == 0 {
		b.WriteString("- No direct source references found in the analyzed content.\n")
	}
	for _, ref := range data.References {
		fmt.Fprintf(&b, "- [source](%s) (Original ID: %s)\n", ref.URL, ref.ID)
	}
	return b.String(), nil
}
