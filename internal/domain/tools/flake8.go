package tools

import (
	"regexp"

	"github.com/openkraft/spackstyle/internal/domain"
)

var flake8Line = regexp.MustCompile(`^(\S[^:]*):([0-9]+): (\[[A-Z]+[0-9]+\] .*)$`)

// Flake8 checks pyflakes and pycodestyle rules. Output uses the pylint
// format: "path:line: [CODE] message".
func Flake8() domain.ToolSpec {
	return domain.ToolSpec{
		Name:             domain.ToolFlake8,
		Executable:       "flake8",
		EnabledByDefault: true,
		TakesFiles:       true,
		Args: func(ctx domain.ToolContext) []string {
			flags := []string{"--format", "pylint"}
			if ctx.Has(".flake8") {
				flags = append(flags, "--config", ctx.Paths.Abs(".flake8"))
			}
			return build(ctx, true, flags...)
		},
		PathPatterns: []*regexp.Regexp{lineRef},
		Parse:        parseFlake8,
	}
}

func parseFlake8(output string) []domain.Finding {
	var findings []domain.Finding
	for _, line := range splitLines(output) {
		m := flake8Line.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		findings = append(findings, domain.Finding{File: m[1], Line: atoi(m[2]), Message: m[3]})
	}
	return findings
}
