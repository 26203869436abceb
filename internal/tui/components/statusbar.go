package components

import (
	"strings"

	"github.com/theirongolddev/aurion/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left, the
// last action notice and record count on the right.
func RenderStatusBar(width int, hints, notice, count string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)
	noticeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	left := " " + hints
	right := ""
	if notice != "" {
		right = noticeStyle.Render(notice) + style.UnsetWidth().Render("  ")
	}
	if count != "" {
		right += style.UnsetWidth().Render(count + " ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
