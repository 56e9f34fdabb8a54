package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/redlens/redlens/internal/activity"
	"github.com/redlens/redlens/internal/citation"
	ctxpkg "github.com/redlens/redlens/internal/context"
)

func (s *Server) handleCountTokens(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	return mcp.NewToolResultText(strconv.Itoa(s.tok.Count(text))), nil
}

func (s *Server) handleTruncateText(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	limit := req.GetInt("max_tokens", 0)
	if limit <= 0 {
		return mcp.NewToolResultError("max_tokens must be a positive integer"), nil
	}
	return mcp.NewToolResultText(s.tok.SmartTruncate(text, limit)), nil
}

type normalizeArgs struct {
	Text     string           `json:"text"`
	Registry []citation.Entry `json:"registry"`
}

func (s *Server) handleNormalizeCitations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args normalizeArgs
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	reg, err := citation.RegistryFromEntries(args.Registry)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid registry: %v", err)), nil
	}
	return mcp.NewToolResultText(s.normalizer.Normalize(args.Text, reg)), nil
}

type packItem struct {
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type packArgs struct {
	Items  []packItem `json:"items"`
	Budget int        `json:"budget"`
}

type packOutput struct {
	Context       string             `json:"context"`
	Tokens        int                `json:"tokens"`
	Truncated     bool               `json:"truncated"`
	ItemsIncluded int                `json:"items_included"`
	Registry      *citation.Registry `json:"registry"`
	// Items carries every processed item, including those the budget dropped.
	Items []activity.ProcessedItem `json:"items"`
}

func (s *Server) handlePackContext(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args packArgs
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	budget := args.Budget
	if budget <= 0 {
		budget = s.budget.PackBudget()
	}

	items := make([]activity.Item, 0, len(args.Items))
	for i, it := range args.Items {
		switch activity.Kind(it.Kind) {
		case activity.KindComment:
			items = append(items, activity.NewComment(it.Body, it.URL, it.CreatedAt))
		case activity.KindPost:
			items = append(items, activity.NewPost(it.Title, it.Body, it.URL, it.CreatedAt))
		default:
			return mcp.NewToolResultError(fmt.Sprintf("item %d: kind must be comment or post, got %q", i, it.Kind)), nil
		}
	}

	proc := activity.NewProcessor(s.tok, activity.ProcessorOptions{
		ItemTokens:             s.budget.ItemTokens,
		SummarizationThreshold: s.budget.SummarizationThreshold,
	}, s.log)
	processed := proc.Process(items)
	packed := ctxpkg.NewPacker(ctxpkg.NewFormatter(), s.tok, s.log).Pack(processed.Items, budget)

	b, err := json.MarshalIndent(packOutput{
		Context:       packed.Text,
		Tokens:        packed.Tokens,
		Truncated:     packed.Truncated,
		ItemsIncluded: packed.ItemsIncluded,
		Registry:      processed.Registry,
		Items:         processed.Items,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
