package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/spackstyle/internal/adapters/outbound/config"
	"github.com/openkraft/spackstyle/internal/adapters/outbound/gitdiff"
	"github.com/openkraft/spackstyle/internal/adapters/outbound/layout"
	"github.com/openkraft/spackstyle/internal/adapters/outbound/runlock"
	"github.com/openkraft/spackstyle/internal/adapters/outbound/runner"
	"github.com/openkraft/spackstyle/internal/application"
	"github.com/openkraft/spackstyle/internal/domain"
)

// registerTools registers the style MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. spack_style
	s.AddTool(
		mcplib.NewTool("spack_style",
			mcplib.WithDescription("Run the style checks (isort, mypy, flake8, optionally black) on changed or given files and return the report as JSON"),
			mcplib.WithString("files", mcplib.Description("Comma-separated file paths relative to the repository root; empty means changed files")),
			mcplib.WithString("base", mcplib.Description("Git reference to compare against (default: develop)")),
			mcplib.WithBoolean("all", mcplib.Description("Check all tracked files")),
			mcplib.WithBoolean("black", mcplib.Description("Also run black")),
		),
		handleStyle(projectPath),
	)

	// 2. spack_changed_files
	s.AddTool(
		mcplib.NewTool("spack_changed_files",
			mcplib.WithDescription("List the files the style checks would run on"),
			mcplib.WithString("base", mcplib.Description("Git reference to compare against (default: develop)")),
			mcplib.WithBoolean("all", mcplib.Description("List all tracked files")),
			mcplib.WithBoolean("untracked", mcplib.Description("Include untracked files (default: true)")),
		),
		handleChangedFiles(projectPath),
	)
}

// newStyleService wires the standard outbound adapters.
func newStyleService() *application.StyleService {
	return application.NewStyleService(
		gitdiff.New(),
		runner.New(nil),
		config.New(),
		layout.New(),
		runlock.New(""),
		nil,
	)
}

func baseRequest(projectPath string, args map[string]any) (application.StyleRequest, error) {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return application.StyleRequest{}, fmt.Errorf("resolving path: %w", err)
	}

	untracked := true
	if v, ok := args["untracked"].(bool); ok {
		untracked = v
	}
	base, _ := args["base"].(string)
	all, _ := args["all"].(bool)

	return application.StyleRequest{
		Cwd:          abs,
		Base:         base,
		AllFiles:     all,
		Untracked:    untracked,
		RootRelative: true,
	}, nil
}

func handleStyle(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		req, err := baseRequest(projectPath, args)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if black, _ := args["black"].(bool); black {
			req.Tools = map[string]bool{domain.ToolBlack: true}
		}

		svc := newStyleService()
		if filesStr, ok := args["files"].(string); ok && filesStr != "" {
			root, err := svc.ResolveRoot(req)
			if err != nil {
				return errorResult(err.Error()), nil
			}
			for _, f := range splitAndTrim(filesStr) {
				req.Files = append(req.Files, domain.NewPaths(root).Abs(f))
			}
		}

		report, _, err := svc.Check(ctx, req)
		if err != nil {
			return errorResult(fmt.Sprintf("style failed: %v", err)), nil
		}
		return jsonResult(styleResponse{
			StyleReport: report,
			Succeeded:   report.Succeeded(),
			FailedTools: report.Failed(),
		})
	}
}

type styleResponse struct {
	*domain.StyleReport
	Succeeded   bool     `json:"succeeded"`
	FailedTools []string `json:"failed_tools,omitempty"`
}

func handleChangedFiles(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		req, err := baseRequest(projectPath, request.GetArguments())
		if err != nil {
			return errorResult(err.Error()), nil
		}

		_, files, err := newStyleService().ChangedFiles(req)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if files == nil {
			files = domain.ChangeSet{}
		}
		return jsonResult(files)
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
