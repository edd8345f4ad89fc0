package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewStyleMCPServer creates a new MCP server with the style tools and
// resources registered. projectPath is any directory inside the spack
// checkout to check.
func NewStyleMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"spack-style",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}
