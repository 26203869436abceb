package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/aurion/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a block progress bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := min(max(int(pct*float64(width)), 0), width)

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForCoverage colors an attributed work percentage: green at exactly
// 100, yellow below, red above.
func ColorForCoverage(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct > 100:
		return t.Red
	case pct == 100:
		return t.Green
	default:
		return t.Yellow
	}
}

// CoverageBar renders a labeled bar for the total work percentage attributed
// on a project. The bar saturates at 100%; the number does not.
func CoverageBar(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active
	color := ColorForCoverage(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	ratio := min(max(pct/100, 0), 1)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(padRight(truncate(label, labelW), labelW)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(ratio) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
}
