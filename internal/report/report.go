// Package report renders an analysis result as a downloadable report.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/redlens/redlens/internal/analysis"
	"github.com/redlens/redlens/internal/citation"
)

// Data is passed to every Exporter.
type Data struct {
	Username         string
	RunID            string
	GeneratedAt      time.Time
	ExecutiveSummary string
	Persona          string
	References       []citation.Entry
	ItemsIncluded    int
	ContextTokens    int
	Truncated        bool
	Warnings         []string
}

// FromResult collects the report fields of a pipeline result.
func FromResult(res *analysis.Result) Data {
	return Data{
		Username:         res.Username,
		RunID:            res.RunID,
		GeneratedAt:      res.GeneratedAt,
		ExecutiveSummary: res.ExecutiveSummary,
		Persona:          res.Persona,
		References:       res.Context.Registry.Entries(),
		ItemsIncluded:    res.Context.ItemsIncluded,
		ContextTokens:    res.Context.Tokens,
		Truncated:        res.Context.Truncated,
		Warnings:         res.Warnings,
	}
}

// Exporter renders Data to a string in a specific format.
type Exporter interface {
	Export(data Data) (string, error)
	// Extension is the file extension, without the dot.
	Extension() string
}

// registry maps format names to Exporter implementations.
var registry = map[string]Exporter{
	"text":     &TextExporter{},
	"markdown": &MarkdownExporter{},
	"json":     &JSONExporter{},
}

// Get returns the Exporter registered under name, and whether it was found.
func Get(name string) (Exporter, bool) {
	e, ok := registry[name]
	return e, ok
}

// ValidFormats returns the supported format names in sorted order.
func ValidFormats() []string {
	formats := make([]string, 0, len(registry))
	for k := range registry {
		formats = append(formats, k)
	}
	sort.Strings(formats)
	return formats
}

// DefaultFilename returns {username}_reddit_persona_report.{ext}.
func DefaultFilename(username, format string) (string, error) {
	e, ok := Get(format)
	if !ok {
		return "", fmt.Errorf("report: unknown format %q", format)
	}
	return fmt.Sprintf("%s_reddit_persona_report.%s", username, e.Extension()), nil
}
