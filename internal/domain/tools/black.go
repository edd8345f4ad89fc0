package tools

import (
	"regexp"

	"github.com/openkraft/spackstyle/internal/domain"
)

var (
	blackHeader   = regexp.MustCompile(`(?m)^(?:---|\+\+\+) (\S+)`)
	blackReformat = regexp.MustCompile(`(?m)^would reformat (\S+)`)
)

// Black checks formatting and prints a unified diff for each file it would
// change. It is off unless requested.
func Black() domain.ToolSpec {
	return domain.ToolSpec{
		Name:       domain.ToolBlack,
		Executable: "black",
		TakesFiles: true,
		Fixes:      true,
		Args: func(ctx domain.ToolContext) []string {
			var flags []string
			if !ctx.Fix {
				flags = append(flags, "--check", "--diff")
			}
			if ctx.Has("pyproject.toml") {
				flags = append(flags, "--config", ctx.Paths.Abs("pyproject.toml"))
			}
			return build(ctx, true, flags...)
		},
		PathPatterns: []*regexp.Regexp{blackHeader, blackReformat},
		Parse:        parseBlack,
	}
}

func parseBlack(output string) []domain.Finding {
	var findings []domain.Finding
	seen := make(map[string]bool)
	for _, m := range blackReformat.FindAllStringSubmatch(output, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		findings = append(findings, domain.Finding{File: m[1], Message: "would reformat"})
	}
	return findings
}
