package tools

import (
	"regexp"

	"github.com/openkraft/spackstyle/internal/domain"
)

var mypyLine = regexp.MustCompile(`^(\S[^:]*):([0-9]+):(?:[0-9]+:)? error: (.*)$`)

// Mypy type-checks the spack and llnl packages as a whole; it ignores the
// file list and resolves packages through MYPYPATH.
func Mypy() domain.ToolSpec {
	return domain.ToolSpec{
		Name:             domain.ToolMypy,
		Executable:       "mypy",
		EnabledByDefault: true,
		Args: func(ctx domain.ToolContext) []string {
			flags := []string{"--show-error-codes"}
			if ctx.Has("pyproject.toml") {
				flags = append(flags, "--config-file", ctx.Paths.Abs("pyproject.toml"))
			}
			flags = append(flags, "--package", "spack", "--package", "llnl")
			return build(ctx, false, flags...)
		},
		Env: func(ctx domain.ToolContext) []string {
			return []string{"MYPYPATH=" + ctx.Paths.LibPath}
		},
		PathPatterns: []*regexp.Regexp{lineRef},
		Parse:        parseMypy,
	}
}

func parseMypy(output string) []domain.Finding {
	var findings []domain.Finding
	for _, line := range splitLines(output) {
		m := mypyLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		findings = append(findings, domain.Finding{File: m[1], Line: atoi(m[2]), Message: m[3]})
	}
	return findings
}
