package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/redlens/redlens/internal/config"
	ctxpkg "github.com/redlens/redlens/internal/context"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tok, err := ctxpkg.NewTokenizer()
	if err != nil {
		t.Fatalf("NewTokenizer: %v", err)
	}
	return NewServer(tok, config.DefaultConfig().Budget, zerolog.Nop())
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return text.Text
}

func TestCountTokens(t *testing.T) {
	s := newTestServer(t)
	res, err := s.handleCountTokens(context.Background(), callRequest("count_tokens", map[string]any{"text": "Hello, world!"}))
	if err != nil || res.IsError {
		t.Fatalf("count_tokens failed: %v %v", err, res)
	}
	n, convErr := strconv.Atoi(resultText(t, res))
	if convErr != nil || n != s.tok.Count("Hello, world!") {
		t.Errorf("count = %q", resultText(t, res))
	}
}

func TestCountTokens_MissingText(t *testing.T) {
	s := newTestServer(t)
	res, _ := s.handleCountTokens(context.Background(), callRequest("count_tokens", map[string]any{}))
	if !res.IsError {
		t.Error("expected tool error for missing text")
	}
}

func TestTruncateText(t *testing.T) {
	s := newTestServer(t)
	long := strings.Repeat("several words of filler ", 200)
	res, _ := s.handleTruncateText(context.Background(), callRequest("truncate_text", map[string]any{
		"text": long, "max_tokens": float64(50),
	}))
	if res.IsError {
		t.Fatalf("truncate_text failed: %s", resultText(t, res))
	}
	got := resultText(t, res)
	if n := s.tok.Count(got); n > 50 {
		t.Errorf("truncated text has %d tokens", n)
	}
	if !strings.Contains(got, "[...]") {
		t.Errorf("expected separator: %q", got)
	}
}

func TestTruncateText_BadLimit(t *testing.T) {
	s := newTestServer(t)
	res, _ := s.handleTruncateText(context.Background(), callRequest("truncate_text", map[string]any{"text": "x"}))
	if !res.IsError {
		t.Error("expected tool error without max_tokens")
	}
}

func TestNormalizeCitations(t *testing.T) {
	s := newTestServer(t)
	res, _ := s.handleNormalizeCitations(context.Background(), callRequest("normalize_citations", map[string]any{
		"text": "Likes Go [SRC002] and tea (source)",
		"registry": []any{
			map[string]any{"id": "SRC001", "url": "https://reddit.com/a"},
			map[string]any{"id": "SRC002", "url": "https://reddit.com/b"},
		},
	}))
	if res.IsError {
		t.Fatalf("normalize failed: %s", resultText(t, res))
	}
	want := "Likes Go [source](https://reddit.com/b) and tea [source](https://reddit.com/a)"
	if got := resultText(t, res); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeCitations_DuplicateIDs(t *testing.T) {
	s := newTestServer(t)
	res, _ := s.handleNormalizeCitations(context.Background(), callRequest("normalize_citations", map[string]any{
		"text": "x",
		"registry": []any{
			map[string]any{"id": "SRC001", "url": "https://reddit.com/a"},
			map[string]any{"id": "SRC001", "url": "https://reddit.com/b"},
		},
	}))
	if !res.IsError {
		t.Error("duplicate registry IDs should be rejected")
	}
}

func TestPackContext(t *testing.T) {
	s := newTestServer(t)
	res, _ := s.handlePackContext(context.Background(), callRequest("pack_context", map[string]any{
		"items": []any{
			map[string]any{"kind": "comment", "body": "nice", "url": "https://reddit.com/c", "created_at": "1970-01-01T00:01:40Z"},
			map[string]any{"kind": "post", "title": "Hi", "body": "world", "url": "https://reddit.com/p", "created_at": "1970-01-01T00:03:20Z"},
		},
	}))
	if res.IsError {
		t.Fatalf("pack_context failed: %s", resultText(t, res))
	}

	var out struct {
		Context       string `json:"context"`
		Tokens        int    `json:"tokens"`
		ItemsIncluded int    `json:"items_included"`
		Registry      []struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"registry"`
		Items []struct {
			CitationID  string `json:"citation_id"`
			DisplayText string `json:"display_text"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(out.Context, "[SRC001] POST (1970-01-01): Title: Hi. Content: world") {
		t.Errorf("context:\n%s", out.Context)
	}
	if out.ItemsIncluded != 2 || len(out.Registry) != 2 || out.Registry[0].URL != "https://reddit.com/p" {
		t.Errorf("unexpected output: %+v", out)
	}
	if len(out.Items) != 2 || out.Items[0].CitationID != "SRC001" || out.Items[0].DisplayText != "Title: Hi. Body: world" {
		t.Errorf("unexpected items: %+v", out.Items)
	}
	if out.Items[1].DisplayText != "nice" {
		t.Errorf("comment display text = %q", out.Items[1].DisplayText)
	}
}

func TestPackContext_BadKind(t *testing.T) {
	s := newTestServer(t)
	res, _ := s.handlePackContext(context.Background(), callRequest("pack_context", map[string]any{
		"items": []any{
			map[string]any{"kind": "video", "body": "x", "url": "u", "created_at": "2024-01-01T00:00:00Z"},
		},
	}))
	if !res.IsError {
		t.Error("unknown kind should be a tool error")
	}
}

func TestMCPServer_RegistersTools(t *testing.T) {
	srv := newTestServer(t).MCPServer("test")
	if srv == nil {
		t.Fatal("nil server")
	}
}
