package tools

import (
	"regexp"
	"strings"

	"github.com/openkraft/spackstyle/internal/domain"
)

var isortLine = regexp.MustCompile(`^ERROR: (\S+) (Imports are incorrectly sorted.*)$`)

// Isort checks import ordering. It reports absolute paths, which are left
// as printed.
func Isort() domain.ToolSpec {
	return domain.ToolSpec{
		Name:             domain.ToolIsort,
		Executable:       "isort",
		EnabledByDefault: true,
		TakesFiles:       true,
		Fixes:            true,
		Args: func(ctx domain.ToolContext) []string {
			var flags []string
			if !ctx.Fix {
				flags = append(flags, "--check", "--diff")
			}
			if ctx.Has("pyproject.toml") {
				flags = append(flags, "--settings-path", ctx.Paths.Prefix)
			}
			return build(ctx, true, flags...)
		},
		Parse: parseIsort,
	}
}

func parseIsort(output string) []domain.Finding {
	var findings []domain.Finding
	for _, line := range splitLines(output) {
		m := isortLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		findings = append(findings, domain.Finding{File: m[1], Message: m[2]})
	}
	return findings
}
