package domain

import "regexp"

// Tool names, in the order they run.
const (
	ToolIsort  = "isort"
	ToolMypy   = "mypy"
	ToolBlack  = "black"
	ToolFlake8 = "flake8"
)

// ToolOrder is the fixed execution order of the style tools.
var ToolOrder = []string{ToolIsort, ToolMypy, ToolBlack, ToolFlake8}

// ToolContext is what an argument template sees when building a command line.
type ToolContext struct {
	Paths     Paths
	Files     []string
	Fix       bool
	ExtraArgs []string
	// Exists reports whether a root-relative file is present. Nil means no.
	Exists func(rel string) bool
}

// Has reports whether the root-relative file rel exists under the root.
func (c ToolContext) Has(rel string) bool {
	return c.Exists != nil && c.Exists(rel)
}

// ToolSpec describes one external linter or formatter.
type ToolSpec struct {
	Name             string
	Executable       string
	EnabledByDefault bool
	// TakesFiles is false for tools that check whole packages.
	TakesFiles bool
	// Fixes is true for tools that can rewrite files in place.
	Fixes bool
	Args  func(ToolContext) []string
	Env   func(ToolContext) []string
	// PathPatterns find file paths in the tool's output; submatch 1 is the path.
	PathPatterns []*regexp.Regexp
	Parse        func(output string) []Finding
}

// IsValidTool reports whether name is a known tool.
func IsValidTool(name string) bool {
	for _, t := range ToolOrder {
		if t == name {
			return true
		}
	}
	return false
}
