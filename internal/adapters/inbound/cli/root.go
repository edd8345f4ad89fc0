package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openkraft/spackstyle/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "spack",
		Short:         "Spack developer commands",
		Long:          "Developer tooling for a spack checkout: style checks on the files a branch changed.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &domain.UsageError{Msg: err.Error()}
	})
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newStyleCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the root command until completion or until an interrupt
// cancels the running tool. Errors other than a failing report are printed
// to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

// ExitCode maps an Execute error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *domain.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var usageErr *domain.UsageError
	if errors.As(err, &usageErr) {
		return 2
	}
	return 1
}

func printError(w io.Writer, err error) {
	var exitErr *domain.ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fmt.Fprintf(w, "==> Error: %s\n", err)
}
