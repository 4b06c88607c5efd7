package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/zakariaelb/canrag/internal/vectorstore"
)

// handleAskQuestion runs the full answer pipeline for a single question.
// MCP calls are stateless; there is no chat history to rewrite against.
func (s *Server) handleAskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	answer, mode, err := s.engine.Ask(ctx, nil, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("[mode: %s]\n%s", mode, answer)), nil
}

// handleSearchCorpus performs raw semantic retrieval without generation.
func (s *Server) handleSearchCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	results, err := s.engine.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No results found. The corpus may not be indexed yet. Run `canrag ingest` to index it."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// formatSearchResults converts retrieval results into a text format optimized
// for AI agent consumption.
func formatSearchResults(results []vectorstore.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Document: %s\n", r.Entry.Metadata.DocumentID))
		if r.Entry.Metadata.Source != "" {
			sb.WriteString(fmt.Sprintf("Source: %s\n", r.Entry.Metadata.Source))
		}
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", r.Score*100))
		sb.WriteString("\n")
		sb.WriteString(r.Entry.Text)
		sb.WriteString("\n")
	}

	return sb.String()
}
