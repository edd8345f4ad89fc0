package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/openkraft/spackstyle/internal/adapters/outbound/config"
	"github.com/openkraft/spackstyle/internal/adapters/outbound/gitdiff"
	"github.com/openkraft/spackstyle/internal/adapters/outbound/layout"
	"github.com/openkraft/spackstyle/internal/adapters/outbound/runlock"
	"github.com/openkraft/spackstyle/internal/adapters/outbound/runner"
	"github.com/openkraft/spackstyle/internal/adapters/outbound/tui"
	"github.com/openkraft/spackstyle/internal/application"
	"github.com/openkraft/spackstyle/internal/domain"
)

type styleOptions struct {
	base         string
	all          bool
	noUntracked  bool
	rootRelative bool
	root         string
	fix          bool
	black        bool
	noIsort      bool
	noMypy       bool
	noFlake8     bool
	jsonOutput   bool
	summary      bool
	verbose      bool
}

func newStyleCmd() *cobra.Command {
	var opts styleOptions

	cmd := &cobra.Command{
		Use:   "style [files...]",
		Short: "Runs source code style checks on spack",
		Long: "Run isort, mypy and flake8 (and optionally black) on the Python files changed " +
			"relative to a base branch, or on the given files, and report the combined result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStyle(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.base, "base", "b", "", "branch to compare against to determine changed files (default: develop)")
	f.BoolVarP(&opts.all, "all", "a", false, "check all files, not just changed files")
	f.BoolVarP(&opts.noUntracked, "no-untracked", "U", false, "exclude untracked files from checks")
	f.BoolVarP(&opts.rootRelative, "root-relative", "r", false, "print root-relative paths (default: cwd-relative)")
	f.StringVar(&opts.root, "root", "", "style check a different spack instance")
	f.BoolVarP(&opts.fix, "fix", "f", false, "format automatically if possible (e.g., with isort, black)")
	f.BoolVar(&opts.black, "black", false, "run black checks (default: skip)")
	f.BoolVar(&opts.noIsort, "no-isort", false, "do not run isort")
	f.BoolVar(&opts.noMypy, "no-mypy", false, "do not run mypy")
	f.BoolVar(&opts.noFlake8, "no-flake8", false, "do not run flake8")
	f.BoolVar(&opts.jsonOutput, "json", false, "output the report as JSON")
	f.BoolVar(&opts.summary, "summary", false, "append findings grouped by file")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log every tool invocation to stderr")

	return cmd
}

func newStyleService(logger *slog.Logger) *application.StyleService {
	return application.NewStyleService(
		gitdiff.New(),
		runner.New(logger),
		config.New(),
		layout.New(),
		runlock.New(""),
		logger,
	)
}

// toolOverrides returns only the selections the user made explicitly so
// that .spack-style.yaml keeps its say over the rest.
func toolOverrides(cmd *cobra.Command, opts styleOptions) map[string]bool {
	overrides := map[string]bool{}
	set := func(flag, tool string, enabled bool) {
		if cmd.Flags().Changed(flag) {
			overrides[tool] = enabled
		}
	}
	set("black", domain.ToolBlack, opts.black)
	set("no-isort", domain.ToolIsort, !opts.noIsort)
	set("no-mypy", domain.ToolMypy, !opts.noMypy)
	set("no-flake8", domain.ToolFlake8, !opts.noFlake8)
	return overrides
}

func runStyle(cmd *cobra.Command, opts styleOptions, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	req := application.StyleRequest{
		Files:        args,
		Root:         opts.root,
		FallbackRoot: os.Getenv("SPACK_ROOT"),
		Cwd:          cwd,
		Base:         opts.base,
		AllFiles:     opts.all,
		Untracked:    !opts.noUntracked,
		RootRelative: opts.rootRelative,
		Fix:          opts.fix,
		Tools:        toolOverrides(cmd, opts),
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
	svc := newStyleService(logger)
	report, plan, err := svc.Check(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	} else {
		fmt.Fprint(out, tui.RenderStyleReport(report, plan.Formatter))
		if opts.summary {
			fmt.Fprint(out, tui.RenderFindings(report, plan.Formatter))
		}
	}

	if !report.Succeeded() {
		logger.Debug("style checks failed", "tools", report.Failed())
		return &domain.ExitError{Code: report.ExitCode()}
	}
	return nil
}
