package domain

import "fmt"

// ConfigurationError reports a problem with the invocation's configuration,
// such as a base reference that does not exist.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewMissingBaseError is returned when base does not resolve in the repository.
func NewMissingBaseError(base string) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf("This repository does not have a '%s' branch.", base)}
}

// ToolUnavailableError means a tool's executable is not on the search path.
type ToolUnavailableError struct {
	Tool       string
	Executable string
}

func (e *ToolUnavailableError) Error() string {
	return fmt.Sprintf("%s is not installed", e.Tool)
}

// UsageError reports malformed command-line input.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// ExitError carries a non-zero status to the process boundary.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
