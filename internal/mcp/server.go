// Package mcp exposes the context pipeline's core operations as MCP tools
// over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/redlens/redlens/internal/citation"
	"github.com/redlens/redlens/internal/config"
	ctxpkg "github.com/redlens/redlens/internal/context"
)

// Server holds the tokenizer and budgets shared by the tool handlers.
type Server struct {
	tok        *ctxpkg.Tokenizer
	normalizer *citation.Normalizer
	budget     config.BudgetConfig
	log        zerolog.Logger
}

// NewServer creates a Server.
func NewServer(tok *ctxpkg.Tokenizer, budget config.BudgetConfig, log zerolog.Logger) *Server {
	return &Server{
		tok:        tok,
		normalizer: citation.NewNormalizer(),
		budget:     budget,
		log:        log,
	}
}

// MCPServer builds the MCP server with every tool registered.
func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer("redlens", version, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("count_tokens",
		mcp.WithDescription("Count cl100k_base tokens in a text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to count")),
	), s.handleCountTokens)

	srv.AddTool(mcp.NewTool("truncate_text",
		mcp.WithDescription("Shorten a text to a token ceiling, keeping its opening and closing and marking the cut with [...]."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to truncate")),
		mcp.WithNumber("max_tokens", mcp.Required(), mcp.Description("Token ceiling")),
	), s.handleTruncateText)

	srv.AddTool(mcp.NewTool("normalize_citations",
		mcp.WithDescription("Rewrite citation markers such as [SRC001], (source) or [[source]] to [source](url) links."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Generated text containing citation markers")),
		mcp.WithArray("registry", mcp.Required(),
			mcp.Description("Ordered citation entries; the first is the fallback for unresolved markers"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":  map[string]any{"type": "string"},
					"url": map[string]any{"type": "string"},
				},
				"required": []string{"id", "url"},
			}),
		),
	), s.handleNormalizeCitations)

	srv.AddTool(mcp.NewTool("pack_context",
		mcp.WithDescription("Number comments and posts SRC001.. newest first and pack them into a token-bounded context."),
		mcp.WithArray("items", mcp.Required(),
			mcp.Description("Activity items"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"kind":       map[string]any{"type": "string", "enum": []string{"comment", "post"}},
					"title":      map[string]any{"type": "string"},
					"body":       map[string]any{"type": "string"},
					"url":        map[string]any{"type": "string"},
					"created_at": map[string]any{"type": "string", "description": "RFC 3339 timestamp"},
				},
				"required": []string{"kind", "body", "url", "created_at"},
			}),
		),
		mcp.WithNumber("budget", mcp.Description("Context token budget (default: context_tokens - reserved_tokens)")),
	), s.handlePackContext)

	return srv
}

// ServeStdio serves the tools on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio(version string) error {
	return server.ServeStdio(s.MCPServer(version))
}
