package domain

import "context"

// ChangeDetector computes the changed-file set of a repository. The result
// never contains paths under the external subtree.
type ChangeDetector interface {
	ChangedFiles(paths Paths, query ChangeQuery) (ChangeSet, error)
}

// Command is one subprocess invocation.
type Command struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
	Dir  string   `json:"dir"`
	Env  []string `json:"env,omitempty"`
}

// RunResult is the captured outcome of a subprocess.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs subprocesses. A non-zero exit is reported through
// RunResult.ExitCode, not as an error; a missing executable is a
// *ToolUnavailableError.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (RunResult, error)
}

// ConfigLoader loads the style configuration of a repository root.
type ConfigLoader interface {
	Load(root string) (StyleConfig, error)
}

// LayoutDetector recognises directories laid out like a Spack repository.
type LayoutDetector interface {
	IsRoot(dir string) bool
	FindRoot(start string) (string, error)
}

// RunLocker serialises fixing runs on one root.
type RunLocker interface {
	Acquire(root string) (release func() error, err error)
}
