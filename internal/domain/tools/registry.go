// Package tools describes the external linters and formatters the style
// command knows how to drive.
package tools

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/openkraft/spackstyle/internal/domain"
)

// lineRef matches "path:line:" at the start of a line.
var lineRef = regexp.MustCompile(`(?m)^([^\s:][^:\n]*):([0-9]+):`)

// Specs returns every known tool in execution order.
func Specs() []domain.ToolSpec {
	return []domain.ToolSpec{Isort(), Mypy(), Black(), Flake8()}
}

// Lookup returns the spec for the named tool.
func Lookup(name string) (domain.ToolSpec, bool) {
	for _, s := range Specs() {
		if s.Name == name {
			return s, true
		}
	}
	return domain.ToolSpec{}, false
}

// build assembles the argument list shared by all tools: fixed flags, then
// configured extra arguments, then the file list for tools that take one.
func build(ctx domain.ToolContext, takesFiles bool, flags ...string) []string {
	args := append([]string{}, flags...)
	args = append(args, ctx.ExtraArgs...)
	if takesFiles {
		args = append(args, ctx.Files...)
	}
	return args
}

func splitLines(output string) []string {
	return strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
