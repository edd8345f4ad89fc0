package application_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/openkraft/spackstyle/internal/adapters/outbound/layout"
	"github.com/openkraft/spackstyle/internal/application"
	"github.com/openkraft/spackstyle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flake8Unused = "lib/spack/spack/dummy.py:7: [F401] 'os' imported but unused\n"

type harness struct {
	root    string
	changes *fakeChanges
	runner  *fakeRunner
	locker  *fakeLocker
	svc     *application.StyleService
}

func newHarness(t *testing.T, cfg domain.StyleConfig) *harness {
	t.Helper()
	h := &harness{
		root:    makeRoot(t),
		changes: &fakeChanges{files: domain.ChangeSet{"lib/spack/spack/dummy.py"}},
		runner: &fakeRunner{results: map[string]domain.RunResult{
			"isort":  {},
			"mypy":   {},
			"black":  {},
			"flake8": {},
		}},
		locker: &fakeLocker{},
	}
	h.svc = application.NewStyleService(h.changes, h.runner, fakeLoader{cfg: cfg}, layout.New(), h.locker, nil)
	return h
}

func (h *harness) request() application.StyleRequest {
	return application.StyleRequest{Cwd: h.root, Untracked: true}
}

func TestCheck_CleanRun(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())

	report, _, err := h.svc.Check(context.Background(), h.request())
	require.NoError(t, err)

	assert.True(t, report.Succeeded())
	assert.Equal(t, 0, report.ExitCode())
	assert.Equal(t, domain.StageReport, report.Stage)
	assert.Equal(t, []string{"lib/spack/spack/dummy.py"}, report.Targets)
	assert.Equal(t, []string{"isort", "mypy", "flake8"}, report.Selected)
	assert.Equal(t, []string{"isort", "mypy", "flake8"}, h.runner.called(), "fixed order, black off by default")
	assert.Equal(t, "develop", h.changes.queries[0].Base)
}

func TestCheck_ToolsRunFromRootWithFiles(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())

	_, _, err := h.svc.Check(context.Background(), h.request())
	require.NoError(t, err)

	for _, c := range h.runner.calls {
		assert.Equal(t, h.root, c.Dir)
	}
	flake8 := h.runner.calls[2]
	assert.Equal(t, []string{"--format", "pylint", "lib/spack/spack/dummy.py"}, flake8.Args)
	mypy := h.runner.calls[1]
	assert.Contains(t, mypy.Env, "MYPYPATH="+filepath.Join(h.root, "lib", "spack"))
}

func TestCheck_FailureIsIsolated(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	h.runner.results["isort"] = domain.RunResult{
		Stdout:   "ERROR: /x/lib/spack/spack/dummy.py Imports are incorrectly sorted and/or formatted.\n",
		ExitCode: 1,
	}
	h.runner.results["flake8"] = domain.RunResult{Stdout: flake8Unused, ExitCode: 1}

	report, _, err := h.svc.Check(context.Background(), h.request())
	require.NoError(t, err)

	assert.False(t, report.Succeeded())
	assert.Equal(t, 1, report.ExitCode())
	assert.Equal(t, []string{"isort", "mypy", "flake8"}, h.runner.called(), "isort failure must not stop later tools")
	assert.Equal(t, []string{"isort", "flake8"}, report.Failed())

	mypy, ok := report.Result("mypy")
	require.True(t, ok)
	assert.Equal(t, domain.ToolPassed, mypy.Status)
}

func TestCheck_MissingToolIsNeutralSkip(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	delete(h.runner.results, "mypy")

	report, _, err := h.svc.Check(context.Background(), h.request())
	require.NoError(t, err)

	mypy, ok := report.Result("mypy")
	require.True(t, ok)
	assert.Equal(t, domain.ToolSkipped, mypy.Status)
	assert.Equal(t, "mypy is not installed; skipping", mypy.Note)
	assert.True(t, report.Succeeded())
	assert.Equal(t, []string{"isort", "mypy", "flake8"}, h.runner.called())
}

func TestCheck_FlakeFindingOnly(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	h.runner.results["flake8"] = domain.RunResult{Stdout: flake8Unused, ExitCode: 1}

	req := h.request()
	req.RootRelative = true
	report, _, err := h.svc.Check(context.Background(), req)
	require.NoError(t, err)

	flake8, _ := report.Result("flake8")
	require.Len(t, flake8.Findings, 1)
	assert.Equal(t, "[F401] 'os' imported but unused", flake8.Findings[0].Message)
	assert.Contains(t, flake8.Output, "lib/spack/spack/dummy.py:7: [F401] 'os' imported but unused")
	assert.Equal(t, []string{"flake8"}, report.Failed())
}

func TestCheck_CwdRelativeOutput(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	h.runner.results["flake8"] = domain.RunResult{Stdout: flake8Unused, ExitCode: 1}

	req := h.request()
	req.Cwd = filepath.Join(h.root, "lib", "spack")
	report, _, err := h.svc.Check(context.Background(), req)
	require.NoError(t, err)

	flake8, _ := report.Result("flake8")
	assert.Contains(t, flake8.Output, filepath.Join("spack", "dummy.py")+":7: [F401]")
	assert.NotContains(t, flake8.Output, "lib/spack/spack/dummy.py")
	assert.Equal(t, "lib/spack/spack/dummy.py", flake8.Findings[0].File, "findings stay root-relative")
}

func TestCheck_IsortFindingsAreReRooted(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	abs := filepath.Join(h.root, "lib", "spack", "spack", "dummy.py")
	h.runner.results["isort"] = domain.RunResult{
		Stdout:   "ERROR: " + abs + " Imports are incorrectly sorted and/or formatted.\n",
		ExitCode: 1,
	}

	report, _, err := h.svc.Check(context.Background(), h.request())
	require.NoError(t, err)

	isort, _ := report.Result("isort")
	assert.Contains(t, isort.Output, abs+" Imports are incorrectly sorted", "isort output is kept verbatim")
	require.Len(t, isort.Findings, 1)
	assert.Equal(t, "lib/spack/spack/dummy.py", isort.Findings[0].File)
}

func TestCheck_ToolSelection(t *testing.T) {
	disabled := false
	cfg := domain.DefaultConfig()
	cfg.Tools = map[string]domain.ToolConfig{
		"mypy":   {Enabled: &disabled},
		"flake8": {Executable: "flake8-3.9"},
	}
	h := newHarness(t, cfg)
	h.runner.results["flake8-3.9"] = domain.RunResult{}

	req := h.request()
	req.Tools = map[string]bool{"black": true, "isort": false}
	report, _, err := h.svc.Check(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"black", "flake8"}, report.Selected)
	assert.Equal(t, []string{"black", "flake8-3.9"}, h.runner.called())
}

func TestCheck_ExtraArgsFromConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Tools = map[string]domain.ToolConfig{"flake8": {ExtraArgs: []string{"--max-line-length", "99"}}}
	h := newHarness(t, cfg)

	_, _, err := h.svc.Check(context.Background(), h.request())
	require.NoError(t, err)

	flake8 := h.runner.calls[2]
	assert.Equal(t, []string{"--format", "pylint", "--max-line-length", "99", "lib/spack/spack/dummy.py"}, flake8.Args)
	isort := h.runner.calls[0]
	assert.NotContains(t, isort.Args, "--max-line-length")
}

func TestCheck_RelativeExecutableResolvesUnderRoot(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Tools = map[string]domain.ToolConfig{
		"flake8": {Executable: "./venv/bin/flake8"},
		"mypy":   {Executable: "mypy-1.0"},
	}
	h := newHarness(t, cfg)
	venvFlake8 := filepath.Join(h.root, "venv", "bin", "flake8")
	h.runner.results[venvFlake8] = domain.RunResult{}

	// Run from a subdirectory: the path must not depend on the cwd.
	req := h.request()
	req.Cwd = filepath.Join(h.root, "lib", "spack")
	report, _, err := h.svc.Check(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"isort", "mypy-1.0", venvFlake8}, h.runner.called())
	flake8, ok := report.Result("flake8")
	require.True(t, ok)
	assert.Equal(t, domain.ToolPassed, flake8.Status)
}

func TestCheck_ReportCarriesRunContext(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	h.runner.results["flake8"] = domain.RunResult{Stdout: flake8Unused, ExitCode: 1}

	req := h.request()
	req.Fix = true
	report, _, err := h.svc.Check(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, h.root, report.Root)
	assert.True(t, report.Fix)
	assert.Equal(t, domain.StageReport, report.Stage)
	assert.Equal(t, []string{"lib/spack/spack/dummy.py"}, report.Targets)
	assert.Equal(t, []string{"isort", "mypy", "flake8"}, report.Selected)
	require.Len(t, report.Results, 3)
	assert.Equal(t, []string{"flake8"}, report.Failed())
}

func TestCheck_InvalidBaseShortCircuits(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	h.changes.err = domain.NewMissingBaseError("foobar")

	req := h.request()
	req.Base = "foobar"
	report, _, err := h.svc.Check(context.Background(), req)
	require.Error(t, err)

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "This repository does not have a 'foobar' branch.", err.Error())
	assert.Equal(t, domain.StageResolveTargets, report.Stage)
	assert.Empty(t, h.runner.calls, "no tool runs after a failed resolve")
}

func TestCheck_ExplicitFilesSkipChangeDetection(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())

	req := h.request()
	req.Files = []string{filepath.Join(h.root, "README.md")}
	report, _, err := h.svc.Check(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, h.changes.queries)
	assert.Equal(t, []string{"README.md"}, report.Targets, "explicit paths are used exactly")
}

func TestCheck_ChangedSetIsFiltered(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	h.changes.files = domain.ChangeSet{"README.md", "bin/spack", "lib/spack/spack/a.py"}

	report, _, err := h.svc.Check(context.Background(), h.request())
	require.NoError(t, err)
	assert.Equal(t, []string{"bin/spack", "lib/spack/spack/a.py"}, report.Targets)
}

func TestCheck_NothingToCheck(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	h.changes.files = nil

	report, _, err := h.svc.Check(context.Background(), h.request())
	require.NoError(t, err)
	assert.Empty(t, report.Targets)
	assert.Empty(t, h.runner.calls)
	assert.True(t, report.Succeeded())
	assert.Equal(t, domain.StageReport, report.Stage)
}

func TestCheck_ExternalRoot(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	external := makeRoot(t)

	req := h.request()
	req.Root = external
	report, plan, err := h.svc.Check(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, external, report.Root)
	assert.Equal(t, external, plan.Paths.Prefix)
	for _, c := range h.runner.calls {
		assert.Equal(t, external, c.Dir)
	}
}

func TestCheck_ExternalRootMustLookLikeSpack(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())

	req := h.request()
	req.Root = t.TempDir()
	_, _, err := h.svc.Check(context.Background(), req)
	require.Error(t, err)

	var usage *domain.UsageError
	assert.True(t, errors.As(err, &usage))
	assert.Empty(t, h.runner.calls)
}

func TestResolveRoot_FallbackRoot(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())

	req := h.request()
	req.Cwd = t.TempDir()
	_, err := h.svc.ResolveRoot(req)
	require.Error(t, err, "cwd outside any checkout")

	req.FallbackRoot = h.root
	root, err := h.svc.ResolveRoot(req)
	require.NoError(t, err)
	assert.Equal(t, h.root, root)
}

func TestResolveRoot_RelativeExternalRoot(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())

	req := h.request()
	req.Cwd = filepath.Dir(h.root)
	req.Root = filepath.Base(h.root)
	root, err := h.svc.ResolveRoot(req)
	require.NoError(t, err)
	assert.Equal(t, h.root, root)
}

func TestCheck_FixTakesLock(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())

	req := h.request()
	req.Fix = true
	req.Tools = map[string]bool{"black": true}
	report, _, err := h.svc.Check(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, report.Fix)
	assert.Equal(t, 1, h.locker.acquired)
	assert.False(t, h.locker.held, "lock released after the run")
	isort := h.runner.calls[0]
	assert.NotContains(t, isort.Args, "--check")
}

func TestCheck_FixRefusedWhileLocked(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	h.locker.held = true

	req := h.request()
	req.Fix = true
	_, _, err := h.svc.Check(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another spack style --fix is running")
	assert.Empty(t, h.runner.calls)
}

func TestCheck_Idempotent(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	h.runner.results["flake8"] = domain.RunResult{Stdout: flake8Unused, ExitCode: 1}

	first, _, err := h.svc.Check(context.Background(), h.request())
	require.NoError(t, err)
	second, _, err := h.svc.Check(context.Background(), h.request())
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)
}

func TestCheck_CancelledContext(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, _, err := h.svc.Check(ctx, h.request())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.StageRunTools, report.Stage)
}

func TestChangedFiles_ReturnsFilteredSet(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig())
	h.changes.files = domain.ChangeSet{"README.md", "lib/spack/spack/a.py"}

	req := h.request()
	req.AllFiles = true
	paths, files, err := h.svc.ChangedFiles(req)
	require.NoError(t, err)
	assert.Equal(t, h.root, paths.Prefix)
	assert.Equal(t, domain.ChangeSet{"lib/spack/spack/a.py"}, files)
	assert.True(t, h.changes.queries[0].AllFiles)
}

func TestAggregate(t *testing.T) {
	results := []domain.ToolResult{
		{Tool: "isort", Status: domain.ToolPassed},
		{Tool: "black", Status: domain.ToolFailed},
	}
	report := application.Aggregate(results)
	assert.False(t, report.Succeeded())
	assert.Equal(t, domain.StageAggregate, report.Stage)

	results[0].Tool = "changed"
	assert.Equal(t, "isort", report.Results[0].Tool, "aggregate copies its input")
}
