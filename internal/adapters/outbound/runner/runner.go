// Package runner runs external tools as subprocesses.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/openkraft/spackstyle/internal/domain"
)

// Exec implements domain.CommandRunner with os/exec.
type Exec struct {
	logger *slog.Logger
}

// New creates an Exec that logs every subprocess to logger. A nil logger
// discards.
func New(logger *slog.Logger) *Exec {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Exec{logger: logger}
}

// Run executes cmd and captures stdout, stderr and the exit status. A
// non-zero exit is not an error.
func (e *Exec) Run(ctx context.Context, cmd domain.Command) (domain.RunResult, error) {
	path, err := exec.LookPath(cmd.Name)
	if err != nil {
		return domain.RunResult{}, &domain.ToolUnavailableError{Tool: cmd.Name, Executable: cmd.Name}
	}

	c := exec.CommandContext(ctx, path, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	e.logger.Debug("running tool", "cmd", cmd.Name, "args", strings.Join(cmd.Args, " "), "dir", cmd.Dir)
	start := time.Now()
	err = c.Run()

	result := domain.RunResult{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		return result, fmt.Errorf("running %s: %w", cmd.Name, ctx.Err())
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		return result, fmt.Errorf("running %s: %w", cmd.Name, err)
	}

	e.logger.Debug("tool finished", "cmd", cmd.Name, "exit_code", result.ExitCode, "elapsed", time.Since(start).Round(time.Millisecond))
	return result, nil
}
