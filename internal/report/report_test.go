package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/redlens/redlens/internal/analysis"
	"github.com/redlens/redlens/internal/citation"
)

func sampleData() Data {
	return Data{
		Username:         "someone",
		RunID:            "run-1",
		GeneratedAt:      time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		ExecutiveSummary: "- Friendly [source](https://reddit.com/c1)",
		Persona:          "## PERSONALITY TRAITS\n- Curious [source](https://reddit.com/p1)",
		References: []citation.Entry{
			{ID: "SRC001", URL: "https://reddit.com/p1"},
			{ID: "SRC002", URL: "https://reddit.com/c1"},
		},
		ItemsIncluded: 2,
		ContextTokens: 80,
		Warnings:      []string{"partial fetch"},
	}
}

func TestTextExporter(t *testing.T) {
	out, err := (&TextExporter{}).Export(sampleData())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	want := "Reddit Persona Report for u/someone\n\n" +
		"Executive Summary\n" + strings.Repeat("=", 50) + "\n" +
		"- Friendly [source](https://reddit.com/c1)\n\n" +
		"Comprehensive Persona\n" + strings.Repeat("=", 50) + "\n" +
		"## PERSONALITY TRAITS\n- Curious [source](https://reddit.com/p1)\n\n" +
		"Source References\n" + strings.Repeat("=", 50) + "\n" +
		"- source: https://reddit.com/p1 (Original ID: SRC001)\n" +
		"- source: https://reddit.com/c1 (Original ID: SRC002)\n"
	if out != want {
		t.Errorf("text report:\n got %q\nwant %q", out, want)
	}
}

func TestTextExporter_NoReferences(t *testing.T) {
	data := sampleData()
	data.References = nil
	out, _ := (&TextExporter{}).Export(data)
	if !strings.Contains(out, "- No direct source references found in the analyzed content.\n") {
		t.Errorf("missing no-references line:\n%s", out)
	}
}

func TestMarkdownExporter(t *testing.T) {
	out, err := (&MarkdownExporter{}).Export(sampleData())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	checks := []string{
		"# Reddit Persona Report for u/someone",
		"## Executive Summary",
		"## Comprehensive Persona",
		"- [source](https://reddit.com/p1) (Original ID: SRC001)",
		"> - partial fetch",
		"2026-10-15 09:30 UTC",
	}
	for _, c := range checks {
		if !strings.Contains(out, c) {
			t.Errorf("missing %q in markdown", c)
		}
	}
}

func TestJSONExporter(t *testing.T) {
	out, err := (&JSONExporter{}).Export(sampleData())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed["username"] != "someone" {
		t.Errorf("username: %v", parsed["username"])
	}
	refs, ok := parsed["references"].([]any)
	if !ok || len(refs) != 2 {
		t.Fatalf("references: %v", parsed["references"])
	}
	first := refs[0].(map[string]any)
	if first["id"] != "SRC001" {
		t.Errorf("references should keep registry order, got %v", first["id"])
	}
}

func TestJSONExporter_EmptyLists(t *testing.T) {
	out, _ := (&JSONExporter{}).Export(Data{Username: "quiet"})
	if !strings.Contains(out, `"references": []`) || !strings.Contains(out, `"warnings": []`) {
		t.Errorf("empty lists should render as []:\n%s", out)
	}
	if strings.Contains(out, "generated_at") {
		t.Error("zero time should be omitted")
	}
}

func TestGet(t *testing.T) {
	for _, name := range []string{"text", "markdown", "json"} {
		if _, ok := Get(name); !ok {
			t.Errorf("Get(%q) not found", name)
		}
	}
	if _, ok := Get("pdf"); ok {
		t.Error("unexpected exporter for pdf")
	}
}

func TestValidFormats(t *testing.T) {
	got := strings.Join(ValidFormats(), ",")
	if got != "json,markdown,text" {
		t.Errorf("ValidFormats = %s", got)
	}
}

func TestDefaultFilename(t *testing.T) {
	cases := map[string]string{
		"text":     "someone_reddit_persona_report.txt",
		"markdown": "someone_reddit_persona_report.md",
		"json":     "someone_reddit_persona_report.json",
	}
	for format, want := range cases {
		got, err := DefaultFilename("someone", format)
		if err != nil || got != want {
			t.Errorf("DefaultFilename(%q) = %q, %v", format, got, err)
		}
	}
	if _, err := DefaultFilename("someone", "pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFromResult(t *testing.T) {
	reg := citation.NewRegistry()
	reg.Add("SRC001", "https://reddit.com/p1")
	res := &analysis.Result{
		RunID:            "r",
		Username:         "someone",
		ExecutiveSummary: "s",
		Persona:          "p",
		Context:          analysis.AssembledContext{Registry: reg, ItemsIncluded: 1, Tokens: 42, Truncated: true},
	}

	data := FromResult(res)
	if len(data.References) != 1 || data.References[0].ID != "SRC001" {
		t.Errorf("references: %+v", data.References)
	}
	if !data.Truncated || data.ContextTokens != 42 {
		t.Errorf("context fields: %+v", data)
	}
}
