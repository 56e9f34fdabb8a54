package report

import (
	"fmt"
	"strings"
)

const underline = "=================================================="

// TextExporter renders the plain-text report.
type TextExporter struct{}

func (e *TextExporter) Extension() string { return "txt" }

func (e *TextExporter) Export(data Data) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Reddit Persona Report for u/%s\n\n", data.Username)

	writeSection(&b, "Executive Summary", data.ExecutiveSummary)
	writeSection(&b, "Comprehensive Persona", data.Persona)

	b.WriteString("Source References\n")
	b.WriteString(underline + "\n")
	if len(data.References) == 0 {
		b.WriteString("- No direct source references found in the analyzed content.\n")
	}
	for _, ref := range data.References {
		fmt.Fprintf(&b, "- source: %s (Original ID: %s)\n", ref.URL, ref.ID)
	}
	return b.String(), nil
}

func writeSection(b *strings.Builder, heading, body string) {
	b.WriteString(heading + "\n")
	b.WriteString(underline + "\n")
	b.WriteString(body + "\n\n")
}
