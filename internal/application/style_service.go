package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openkraft/spackstyle/internal/domain"
	"github.com/openkraft/spackstyle/internal/domain/targets"
)

// StyleRequest is one style invocation.
type StyleRequest struct {
	// Files are explicit paths; empty means the changed-file set.
	Files []string
	// Root overrides repository discovery with an external tree.
	Root string
	// FallbackRoot is used when Cwd is not inside a checkout (SPACK_ROOT).
	FallbackRoot string
	// Cwd anchors relative Files and cwd-relative display paths.
	Cwd          string
	Base         string
	AllFiles     bool
	Untracked    bool
	RootRelative bool
	Fix          bool
	// Tools enables or disables tools by name, over the config.
	Tools map[string]bool
}

// StyleService orchestrates the style pipeline:
// resolve targets -> run tools -> aggregate.
type StyleService struct {
	changes domain.ChangeDetector
	runner  *ToolRunner
	config  domain.ConfigLoader
	layout  domain.LayoutDetector
	locker  domain.RunLocker
	logger  *slog.Logger
}

func NewStyleService(
	changes domain.ChangeDetector,
	runner domain.CommandRunner,
	config domain.ConfigLoader,
	layout domain.LayoutDetector,
	locker domain.RunLocker,
	logger *slog.Logger,
) *StyleService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StyleService{
		changes: changes,
		runner:  NewToolRunner(runner, logger),
		config:  config,
		layout:  layout,
		locker:  locker,
		logger:  logger,
	}
}

// Plan is the outcome of target resolution.
type Plan struct {
	Paths     domain.Paths
	Config    domain.StyleConfig
	Targets   []string
	Tools     []domain.ToolSpec
	Formatter targets.Formatter
}

// ResolveRoot returns the repository root for req: the external root when
// given, otherwise the nearest enclosing spack checkout of req.Cwd, then
// req.FallbackRoot.
func (s *StyleService) ResolveRoot(req StyleRequest) (string, error) {
	if req.Root == "" {
		root, err := s.layout.FindRoot(req.Cwd)
		if err != nil && req.FallbackRoot != "" && s.layout.IsRoot(req.FallbackRoot) {
			return filepath.Clean(req.FallbackRoot), nil
		}
		return root, err
	}

	root := req.Root
	if !filepath.IsAbs(root) {
		root = filepath.Join(req.Cwd, root)
	}
	root = filepath.Clean(root)
	if !s.layout.IsRoot(root) {
		return "", &domain.UsageError{Msg: fmt.Sprintf("--root %s does not look like a spack repository (needs bin/spack and lib/spack/spack)", req.Root)}
	}
	return root, nil
}

// ChangedFiles returns the filtered changed-file set for req.
func (s *StyleService) ChangedFiles(req StyleRequest) (domain.Paths, domain.ChangeSet, error) {
	root, err := s.ResolveRoot(req)
	if err != nil {
		return domain.Paths{}, nil, err
	}
	paths := domain.NewPaths(root)

	cfg, err := s.config.Load(root)
	if err != nil {
		return paths, nil, &domain.ConfigurationError{Msg: "loading config", Err: err}
	}

	changed, err := s.changedFiles(paths, cfg, req)
	return paths, changed, err
}

func (s *StyleService) changedFiles(paths domain.Paths, cfg domain.StyleConfig, req StyleRequest) (domain.ChangeSet, error) {
	base := req.Base
	if base == "" {
		base = cfg.Base
	}

	changed, err := s.changes.ChangedFiles(paths, domain.ChangeQuery{
		Base:      base,
		AllFiles:  req.AllFiles,
		Untracked: req.Untracked,
	})
	if err != nil {
		return nil, err
	}

	filter, err := cfg.Filter()
	if err != nil {
		return nil, &domain.ConfigurationError{Msg: "compiling file filter", Err: err}
	}
	changed = filter.Apply(changed)
	s.logger.Debug("changed files", "base", base, "all", req.AllFiles, "count", len(changed))
	return changed, nil
}

// Resolve performs the RESOLVE_TARGETS stage.
func (s *StyleService) Resolve(req StyleRequest) (*Plan, error) {
	root, err := s.ResolveRoot(req)
	if err != nil {
		return nil, err
	}
	paths := domain.NewPaths(root)

	cfg, err := s.config.Load(root)
	if err != nil {
		return nil, &domain.ConfigurationError{Msg: "loading config", Err: err}
	}

	var changed domain.ChangeSet
	if len(req.Files) == 0 {
		changed, err = s.changedFiles(paths, cfg, req)
		if err != nil {
			return nil, err
		}
	}

	return &Plan{
		Paths:     paths,
		Config:    cfg,
		Targets:   targets.Resolve(paths, req.Cwd, req.Files, changed),
		Tools:     SelectTools(cfg, req.Tools),
		Formatter: targets.Formatter{Paths: paths, Cwd: req.Cwd, RootRelative: req.RootRelative},
	}, nil
}

// Check runs the whole pipeline. The returned report records the stage
// reached even when an error short-circuits it.
func (s *StyleService) Check(ctx context.Context, req StyleRequest) (*domain.StyleReport, *Plan, error) {
	report := &domain.StyleReport{Stage: domain.StageResolveTargets, Fix: req.Fix}

	plan, err := s.Resolve(req)
	if err != nil {
		return report, nil, err
	}
	report.Root = plan.Paths.Prefix
	report.Targets = plan.Targets
	for _, spec := range plan.Tools {
		report.Selected = append(report.Selected, spec.Name)
	}

	if len(plan.Targets) == 0 {
		report.Stage = domain.StageReport
		return report, plan, nil
	}

	if req.Fix {
		release, err := s.locker.Acquire(plan.Paths.Prefix)
		if err != nil {
			return report, plan, err
		}
		defer func() {
			if err := release(); err != nil {
				s.logger.Warn("releasing fix lock", "error", err)
			}
		}()
	}

	report.Stage = domain.StageRunTools
	tc := domain.ToolContext{
		Paths:  plan.Paths,
		Files:  plan.Targets,
		Fix:    req.Fix,
		Exists: existsUnder(plan.Paths),
	}
	results, err := s.runner.RunAll(ctx, plan.Tools, tc, plan.Config, plan.Formatter)
	if err != nil {
		report.Results = results
		return report, plan, err
	}

	aggregated := Aggregate(results)
	aggregated.Root = report.Root
	aggregated.Targets = report.Targets
	aggregated.Selected = report.Selected
	aggregated.Fix = report.Fix
	aggregated.Stage = domain.StageReport
	return aggregated, plan, nil
}

// Aggregate merges per-tool results, in run order, into a report at the
// aggregate stage. The caller fills in what the run was about.
func Aggregate(results []domain.ToolResult) *domain.StyleReport {
	return &domain.StyleReport{
		Results: append([]domain.ToolResult(nil), results...),
		Stage:   domain.StageAggregate,
	}
}

func existsUnder(paths domain.Paths) func(string) bool {
	return func(rel string) bool {
		_, err := os.Stat(paths.Abs(rel))
		return err == nil
	}
}
