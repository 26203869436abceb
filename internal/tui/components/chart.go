package components

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/theirongolddev/aurion/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Bar is one labeled value in a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	Text  string // rendered value shown after the bar
}

// HorizontalBars renders one bar per row, scaled to the largest absolute
// value. Negative values are drawn in red.
func HorizontalBars(bars []Bar, labelW, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	peak := 0.0
	textW := 0
	for _, b := range bars {
		peak = math.Max(peak, math.Abs(b.Value))
		textW = max(textW, utf8.RuneCountInString(b.Text))
	}
	if peak == 0 {
		peak = 1
	}

	barW := max(width-labelW-textW-2, 4)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	posStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	negStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.SurfaceBright).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for i, bar := range bars {
		n := int(math.Round(math.Abs(bar.Value) / peak * float64(barW)))
		n = min(max(n, 0), barW)
		style := posStyle
		if bar.Value < 0 {
			style = negStyle
		}

		b.WriteString(labelStyle.Render(padRight(truncate(bar.Label, labelW), labelW)))
		b.WriteString(spaceStyle.Render(" "))
		b.WriteString(style.Render(strings.Repeat("█", n)))
		b.WriteString(emptyStyle.Render(strings.Repeat("·", barW-n)))
		b.WriteString(spaceStyle.Render(" "))
		b.WriteString(textStyle.Render(padLeft(bar.Text, textW)))
		if i < len(bars)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func padRight(s string, w int) string {
	if n := utf8.RuneCountInString(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func padLeft(s string, w int) string {
	if n := utf8.RuneCountInString(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}
