package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// askQuestionTool defines the ask_question MCP tool.
var askQuestionTool = mcp.NewTool("ask_question",
	mcp.WithDescription("Ask a question about the Africa Cup of Nations corpus. Answers are in French, grounded in the indexed documents, and refuse when the corpus has no supporting content."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to answer, in natural language"),
	),
)

// searchCorpusTool defines the search_corpus MCP tool.
var searchCorpusTool = mcp.NewTool("search_corpus",
	mcp.WithDescription("Search the tournament corpus semantically and return the most relevant text chunks without generating an answer."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of chunks to return (default 5)"),
	),
)
