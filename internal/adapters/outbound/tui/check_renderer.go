package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/spackstyle/internal/domain"
	"github.com/openkraft/spackstyle/internal/domain/targets"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	fileStyle          = lipgloss.NewStyle().Foreground(dim)
	warningItemStyle   = lipgloss.NewStyle().Foreground(warning)
)

// RenderFindings renders every parsed finding grouped by file, or "" when
// there are none.
func RenderFindings(report *domain.StyleReport, f targets.Formatter) string {
	byFile := make(map[string][]toolFinding)
	total := 0
	for _, res := range report.Results {
		for _, fd := range res.Findings {
			byFile[fd.File] = append(byFile[fd.File], toolFinding{tool: res.Tool, Finding: fd})
			total++
		}
	}
	if total == 0 {
		return ""
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n  %s %s\n",
		sectionHeaderStyle.Render("Findings"),
		dimStyle.Render(fmt.Sprintf("(%d in %d files)", total, len(files))),
	))

	for _, file := range files {
		b.WriteString("    " + fileStyle.Render(f.Display(file)) + "\n")
		items := byFile[file]
		sort.SliceStable(items, func(i, j int) bool { return items[i].Line < items[j].Line })
		for _, it := range items {
			loc := ""
			if it.Line > 0 {
				loc = fmt.Sprintf(":%d", it.Line)
			}
			b.WriteString(fmt.Sprintf("      %s %s%s  %s\n",
				warningItemStyle.Render("●"),
				it.tool,
				dimStyle.Render(loc),
				it.Message,
			))
		}
	}
	return b.String()
}

type toolFinding struct {
	tool string
	domain.Finding
}
