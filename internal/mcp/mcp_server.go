// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/whoknows/whoknows/internal/contract"
)

// NewMCPServer initializes and configures the whoknows MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Whoknows Attribution Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- Tool: who_knows_file ---
	s.AddTool(mcp.NewTool("who_knows_file",
		mcp.WithDescription("Rank the authors who know a file best, based on weighted git blame attribution."),
		mcp.WithString("file_path", mcp.Description("Path to the file to rank, absolute or relative to repo_path."), mcp.Required()),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to current directory if not specified).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of authors returned.")),
		mcp.WithString("weight", mcp.Description("Weight vector as commits,lines,latest,earliest (e.g. '1,1,0.5,0').")),
	), h.handleWhoKnowsFile)

	return s
}

// StartMCPServer starts the whoknows MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
