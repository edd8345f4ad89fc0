package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/spackstyle/internal/adapters/outbound/config"
	"github.com/openkraft/spackstyle/internal/adapters/outbound/layout"
)

// registerResources registers the style MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	s.AddResource(
		mcplib.NewResource(
			"spack-style://config",
			"Style Configuration",
			mcplib.WithResourceDescription("Effective .spack-style.yaml configuration, defaults included"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(projectPath),
	)
}

func handleConfigResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return nil, fmt.Errorf("resolving path: %w", err)
		}
		root, err := layout.New().FindRoot(abs)
		if err != nil {
			return nil, err
		}
		cfg, err := config.New().Load(root)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "spack-style://config",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
