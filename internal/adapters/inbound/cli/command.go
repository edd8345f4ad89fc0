package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// Command invokes a spack subcommand in-process, the way tests and
// scripts call it, and captures what it prints.
type Command struct {
	Name string
	// ReturnCode is the exit status of the last Run.
	ReturnCode int
}

// NewCommand returns a harness for the named subcommand.
func NewCommand(name string) *Command {
	return &Command{Name: name}
}

// Run executes the subcommand with args and returns its combined output.
// With failOnError a non-zero exit is returned as an error; without it the
// status is only recorded in ReturnCode.
func (c *Command) Run(failOnError bool, args ...string) (string, error) {
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{c.Name}, args...))

	err := root.ExecuteContext(context.Background())
	if err != nil {
		printError(&buf, err)
	}
	c.ReturnCode = ExitCode(err)

	if failOnError && c.ReturnCode != 0 {
		return buf.String(), fmt.Errorf("command 'spack %s %s' returned error code %d: %w",
			c.Name, strings.Join(args, " "), c.ReturnCode, err)
	}
	return buf.String(), nil
}
