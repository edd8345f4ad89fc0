package cli_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openkraft/spackstyle/internal/adapters/inbound/cli"
	"github.com/openkraft/spackstyle/internal/adapters/outbound/workdir"
)

// fakeTool is the canned behaviour of a fake style tool executable.
type fakeTool struct {
	output string
	code   int
}

// fakeTools installs executables named after the tools into a fresh
// directory at the front of PATH. Each records its arguments in
// <dir>/<name>.args. Tools missing from behaviours exit 0 silently.
func fakeTools(t *testing.T, behaviours map[string]fakeTool) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"isort", "mypy", "black", "flake8"} {
		b := behaviours[name]
		outFile := filepath.Join(dir, name+".out")
		require.NoError(t, os.WriteFile(outFile, []byte(b.output), 0644))
		script := "#!/bin/sh\n" +
			"printf '%s\\n' \"$@\" > '" + filepath.Join(dir, name+".args") + "'\n" +
			"cat '" + outFile + "'\n" +
			"exit " + strconv.Itoa(b.code) + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), 0755))
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("SPACK_ROOT", "")
	return dir
}

// toolArgs returns the arguments the fake tool was last called with, or
// nil when it never ran.
func toolArgs(t *testing.T, dir, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name+".args"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// newSpack creates a spack checkout whose feature branch adds
// lib/spack/spack/dummy.py on top of develop.
func newSpack(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	writeFile(t, dir, "bin/spack", "#!/bin/sh\n")
	writeFile(t, dir, "lib/spack/spack/__init__.py", "")
	writeFile(t, dir, "lib/spack/llnl/__init__.py", "")
	writeFile(t, dir, "lib/spack/external/vendored.py", "")

	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.name", "test user")
	runGit(t, dir, "config", "user.email", "test@user.com")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "initial commit")
	runGit(t, dir, "branch", "-M", "develop")

	runGit(t, dir, "checkout", "-q", "-b", "feature")
	writeFile(t, dir, "lib/spack/spack/dummy.py", "import os\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "add dummy")
	return dir
}

// runStyleIn runs `spack style args...` from dir without failing on error.
func runStyleIn(t *testing.T, dir string, args ...string) (string, *cli.Command) {
	t.Helper()
	cmd := cli.NewCommand("style")
	var out string
	require.NoError(t, workdir.Within(dir, func() error {
		var err error
		out, err = cmd.Run(false, args...)
		return err
	}))
	return out, cmd
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("requires git")
	}
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}
