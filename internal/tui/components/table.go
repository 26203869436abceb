package components

import (
	"strings"

	"github.com/theirongolddev/aurion/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Column describes one table column. Width 0 makes the column flexible: it
// takes whatever is left of the table width.
type Column struct {
	Title string
	Width int
	Right bool
}

// Cell is a table cell with an optional foreground color.
type Cell struct {
	Text  string
	Color lipgloss.Color
}

// Table renders a header, a rule, and rows padded to width. The row at
// selected is highlighted; pass -1 for no selection.
func Table(cols []Column, rows [][]Cell, selected, width int) string {
	t := theme.Active
	widths := columnWidths(cols, width)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	ruleStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)

	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteString(headerStyle.Render(" "))
		}
		b.WriteString(headerStyle.Render(align(c.Title, widths[i], c.Right)))
	}
	b.WriteString("\n")
	b.WriteString(ruleStyle.Render(strings.Repeat("─", width)))

	for r, row := range rows {
		bg := t.Surface
		if r == selected {
			bg = t.SurfaceHover
		}
		b.WriteString("\n")
		for i, c := range cols {
			cell := Cell{}
			if i < len(row) {
				cell = row[i]
			}
			fg := cell.Color
			if fg == "" {
				fg = t.TextPrimary
			}
			style := lipgloss.NewStyle().Foreground(fg).Background(bg)
			if i > 0 {
				b.WriteString(lipgloss.NewStyle().Background(bg).Render(" "))
			}
			b.WriteString(style.Render(align(truncate(cell.Text, widths[i]), widths[i], c.Right)))
		}
	}
	return b.String()
}

func columnWidths(cols []Column, width int) []int {
	widths := make([]int, len(cols))
	used := max(len(cols)-1, 0) // gaps
	flex := 0
	for i, c := range cols {
		if c.Width > 0 {
			widths[i] = c.Width
			used += c.Width
		} else {
			flex++
		}
	}
	if flex > 0 {
		free := LayoutRow(max(width-used, flex*4), flex)
		j := 0
		for i, c := range cols {
			if c.Width == 0 {
				widths[i] = free[j]
				j++
			}
		}
	}
	return widths
}

func align(s string, w int, right bool) string {
	if right {
		return padLeft(s, w)
	}
	return padRight(s, w)
}
