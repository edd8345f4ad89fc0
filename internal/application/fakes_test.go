package application_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/spackstyle/internal/domain"
	"github.com/stretchr/testify/require"
)

// fakeChanges returns a fixed change set, or err.
type fakeChanges struct {
	files   domain.ChangeSet
	err     error
	queries []domain.ChangeQuery
}

func (f *fakeChanges) ChangedFiles(_ domain.Paths, q domain.ChangeQuery) (domain.ChangeSet, error) {
	f.queries = append(f.queries, q)
	return f.files, f.err
}

// fakeRunner answers by executable name. Unknown executables are missing.
type fakeRunner struct {
	results map[string]domain.RunResult
	calls   []domain.Command
}

func (f *fakeRunner) Run(_ context.Context, cmd domain.Command) (domain.RunResult, error) {
	f.calls = append(f.calls, cmd)
	res, ok := f.results[cmd.Name]
	if !ok {
		return domain.RunResult{}, &domain.ToolUnavailableError{Tool: cmd.Name, Executable: cmd.Name}
	}
	return res, nil
}

func (f *fakeRunner) called() []string {
	var names []string
	for _, c := range f.calls {
		names = append(names, c.Name)
	}
	return names
}

type fakeLoader struct {
	cfg domain.StyleConfig
}

func (f fakeLoader) Load(string) (domain.StyleConfig, error) { return f.cfg, nil }

type fakeLocker struct {
	held     bool
	acquired int
}

func (f *fakeLocker) Acquire(root string) (func() error, error) {
	if f.held {
		return nil, &domain.ConfigurationError{Msg: "another spack style --fix is running on " + root}
	}
	f.held = true
	f.acquired++
	return func() error { f.held = false; return nil }, nil
}

// makeRoot creates a directory tree that looks like a spack checkout.
func makeRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, rel := range []string{"bin/spack", "lib/spack/spack/__init__.py", "lib/spack/llnl/__init__.py"} {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, nil, 0644))
	}
	return dir
}
