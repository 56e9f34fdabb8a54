package report

import (
	"encoding/json"
	"time"

	"github.com/redlens/redlens/internal/citation"
)

// JSONExporter renders the report as structured JSON.
type JSONExporter struct{}

func (e *JSONExporter) Extension() string { return "json" }

type jsonOutput struct {
	Username         string           `json:"username"`
	RunID            string           `json:"run_id,omitempty"`
	GeneratedAt      *time.Time       `json:"generated_at,omitempty"`
	ExecutiveSummary string           `json:"executive_summary"`
	Persona          string           `json:"persona"`
	References       []citation.Entry `json:"references"`
	Context          jsonContext      `json:"context"`
	Warnings         []string         `json:"warnings"`
}

type jsonContext struct {
	Items     int  `json:"items"`
	Tokens    int  `json:"tokens"`
	Truncated bool `json:"truncated"`
}

func (e *JSONExporter) Export(data Data) (string, error) {
	out := jsonOutput{
		Username:         data.Username,
		RunID:            data.RunID,
		ExecutiveSummary: data.ExecutiveSummary,
		Persona:          data.Persona,
		References:       data.References,
		Context: jsonContext{
			Items:     data.ItemsIncluded,
			Tokens:    data.ContextTokens,
			Truncated: data.Truncated,
		},
		Warnings: data.Warnings,
	}
	if !data.GeneratedAt.IsZero() {
		t := data.GeneratedAt.UTC()
		out.GeneratedAt = &t
	}
	// Empty lists render as [] rather than null.
	if out.References == nil {
		out.References = []citation.Entry{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
