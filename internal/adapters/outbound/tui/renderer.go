package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/spackstyle/internal/domain"
	"github.com/openkraft/spackstyle/internal/domain/targets"
)

// Palette.
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	arrowStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(fg)
	dimStyle   = lipgloss.NewStyle().Foreground(dim)
	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(success)
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(danger)
	warnStyle  = lipgloss.NewStyle().Foreground(warning)
	skipStyle  = lipgloss.NewStyle().Foreground(skipColor)
)

// Messages the report always prints verbatim.
const (
	MsgClean     = "spack style checks were clean"
	MsgErrors    = "spack style found errors"
	MsgNothing   = "Nothing to check"
	toolClean    = "%s checks were clean"
	toolErrors   = "%s found errors"
	toolRunning  = "Running %s checks"
	headerFormat = "Running style checks on spack"
)

func msg(b *strings.Builder, text string) {
	b.WriteString(arrowStyle.Render("==>") + " " + text + "\n")
}

// RenderStyleReport renders a StyleReport as the consolidated text report.
// Paths are shown through f.
func RenderStyleReport(report *domain.StyleReport, f targets.Formatter) string {
	var b strings.Builder

	header := headerFormat
	if report.Fix {
		header += " (fixing)"
	}
	msg(&b, titleStyle.Render(header))
	if len(report.Selected) > 0 {
		b.WriteString("  " + dimStyle.Render("selected: "+strings.Join(report.Selected, ", ")) + "\n")
	}

	if len(report.Targets) == 0 {
		msg(&b, MsgNothing)
		msg(&b, passStyle.Render(MsgClean))
		return b.String()
	}

	msg(&b, titleStyle.Render("Modified files"))
	for _, t := range report.Targets {
		b.WriteString("  " + f.Display(t) + "\n")
	}

	for _, res := range report.Results {
		renderToolResult(&b, res)
	}

	if report.Succeeded() {
		msg(&b, passStyle.Render(MsgClean))
	} else {
		msg(&b, failStyle.Render(MsgErrors))
	}
	return b.String()
}

func renderToolResult(b *strings.Builder, res domain.ToolResult) {
	if res.Status == domain.ToolSkipped {
		msg(b, skipStyle.Render(res.Note))
		return
	}

	msg(b, fmt.Sprintf(toolRunning, res.Tool))
	if res.Output != "" {
		b.WriteString(res.Output)
		if !strings.HasSuffix(res.Output, "\n") {
			b.WriteString("\n")
		}
	}
	if res.Note != "" {
		b.WriteString("  " + warnStyle.Render(res.Note) + "\n")
	}

	if res.Status == domain.ToolPassed {
		b.WriteString("  " + passStyle.Render(fmt.Sprintf(toolClean, res.Tool)) + "\n")
	} else {
		b.WriteString("  " + failStyle.Render(fmt.Sprintf(toolErrors, res.Tool)) + "\n")
	}
}
