package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/zakariaelb/canrag/internal/rag"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the tournament knowledge base to
// AI agents over stdio.
type Server struct {
	engine *rag.Engine
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server backed by the given engine.
func NewServer(engine *rag.Engine) *Server {
	s := &Server{engine: engine}

	s.mcp = server.NewMCPServer(
		"canrag",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(askQuestionTool, s.handleAskQuestion)
	s.mcp.AddTool(searchCorpusTool, s.handleSearchCorpus)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
