package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/openkraft/spackstyle/internal/domain"
	"github.com/openkraft/spackstyle/internal/domain/targets"
	"github.com/openkraft/spackstyle/internal/domain/tools"
)

// ToolRunner runs the selected tools one after another over a file set.
// A tool that fails or is missing never stops the tools after it.
type ToolRunner struct {
	runner domain.CommandRunner
	logger *slog.Logger
}

func NewToolRunner(runner domain.CommandRunner, logger *slog.Logger) *ToolRunner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ToolRunner{runner: runner, logger: logger}
}

// SelectTools returns the enabled tools in execution order. Config settings
// override the built-in defaults and overrides (from flags) win over both.
func SelectTools(cfg domain.StyleConfig, overrides map[string]bool) []domain.ToolSpec {
	var selected []domain.ToolSpec
	for _, spec := range tools.Specs() {
		tc := cfg.Tool(spec.Name)

		enabled := spec.EnabledByDefault
		if tc.Enabled != nil {
			enabled = *tc.Enabled
		}
		if v, ok := overrides[spec.Name]; ok {
			enabled = v
		}
		if !enabled {
			continue
		}

		if tc.Executable != "" {
			spec.Executable = tc.Executable
		}
		selected = append(selected, spec)
	}
	return selected
}

// RunAll runs every spec in order. Only context cancellation aborts the run.
func (r *ToolRunner) RunAll(
	ctx context.Context,
	specs []domain.ToolSpec,
	tc domain.ToolContext,
	cfg domain.StyleConfig,
	f targets.Formatter,
) ([]domain.ToolResult, error) {
	results := make([]domain.ToolResult, 0, len(specs))
	for _, spec := range specs {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		toolCtx := tc
		toolCtx.ExtraArgs = cfg.Tool(spec.Name).ExtraArgs

		res, err := r.RunOne(ctx, spec, toolCtx, f)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// RunOne runs a single tool and normalises its outcome. The returned error
// is non-nil only when ctx was cancelled.
func (r *ToolRunner) RunOne(ctx context.Context, spec domain.ToolSpec, tc domain.ToolContext, f targets.Formatter) (domain.ToolResult, error) {
	cmd := domain.Command{
		Name: executable(spec.Executable, tc.Paths),
		Args: spec.Args(tc),
		Dir:  tc.Paths.Prefix,
	}
	if spec.Env != nil {
		cmd.Env = spec.Env(tc)
	}

	result := domain.ToolResult{Tool: spec.Name}

	out, err := r.runner.Run(ctx, cmd)
	var unavailable *domain.ToolUnavailableError
	switch {
	case errors.As(err, &unavailable):
		result.Status = domain.ToolSkipped
		result.Note = fmt.Sprintf("%s is not installed; skipping", spec.Name)
		r.logger.Debug("tool not installed", "tool", spec.Name, "executable", spec.Executable)
		return result, nil
	case ctx.Err() != nil:
		return result, ctx.Err()
	case err != nil:
		result.Status = domain.ToolFailed
		result.ExitCode = -1
		result.Note = err.Error()
		r.logger.Warn("tool could not run", "tool", spec.Name, "error", err)
		return result, nil
	}

	raw := joinOutput(out.Stdout, out.Stderr)
	result.ExitCode = out.ExitCode
	result.Output = f.RewriteOutput(raw, spec.PathPatterns)
	result.Findings = normaliseFindings(tc.Paths, spec.Parse(raw))
	if out.ExitCode == 0 {
		result.Status = domain.ToolPassed
	} else {
		result.Status = domain.ToolFailed
	}
	return result, nil
}

// executable resolves a configured path such as ./venv/bin/flake8 against
// the root. Bare names are left for the PATH lookup.
func executable(name string, paths domain.Paths) string {
	if filepath.IsAbs(name) || !strings.ContainsAny(name, "/"+string(filepath.Separator)) {
		return name
	}
	return paths.Abs(name)
}

func joinOutput(stdout, stderr string) string {
	switch {
	case stdout == "":
		return stderr
	case stderr == "":
		return stdout
	case strings.HasSuffix(stdout, "\n"):
		return stdout + stderr
	default:
		return stdout + "\n" + stderr
	}
}

// normaliseFindings makes finding paths root-relative.
func normaliseFindings(paths domain.Paths, findings []domain.Finding) []domain.Finding {
	for i := range findings {
		if filepath.IsAbs(findings[i].File) {
			findings[i].File = paths.Rel(findings[i].File)
		}
	}
	return findings
}
