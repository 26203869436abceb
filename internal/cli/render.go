package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Theme colors (Flexoki Dark)
var (
	ColorBg        = lipgloss.Color("#100F0F")
	ColorSurface   = lipgloss.Color("#1C1B1A")
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorPurple    = lipgloss.Color("#8B7EC8")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil

	// TextCols is how many leading columns are left-aligned; the rest are
	// right-aligned amounts. Zero means one.
	TextCols int
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row holding
// the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	textCols := t.TextCols
	if textCols <= 0 {
		textCols = 1
	}
	widths := columnWidths(t, numCols)

	rule := func(left, mid, right string) string {
		segs := make([]string, len(widths))
		for i, w := range widths {
			segs[i] = strings.Repeat("─", w+2)
		}
		return dimStyle.Render(left+strings.Join(segs, mid)+right) + "\n"
	}
	line := func(cells []string, style lipgloss.Style, alignRight func(int) bool) string {
		bar := dimStyle.Render("│")
		var b strings.Builder
		b.WriteString(bar)
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if alignRight(i) {
				cell = padLeft(cell, w)
			} else {
				cell = padRight(cell, w)
			}
			b.WriteString(style.Render(" " + cell + " "))
			b.WriteString(bar)
		}
		return b.String() + "\n"
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	b.WriteString(rule("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(line(t.Headers, headerStyle, func(int) bool { return false }))
		b.WriteString(rule("├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}
		b.WriteString(line(row, valueStyle, func(i int) bool { return i >= textCols }))
	}
	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	for _, row := range append([][]string{t.Headers}, t.Rows...) {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}
	return widths
}

// RenderCoverageBar renders a text bar for an attributed work percentage,
// marking anything over 100% in the warning color.
func RenderCoverageBar(pct decimal.Decimal, width int) string {
	if width <= 0 {
		return ""
	}
	f, _ := pct.Float64()
	ratio := f / 100
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	filled := int(ratio * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	style := goodStyle
	switch {
	case pct.GreaterThan(decimal.NewFromInt(100)):
		style = warnStyle
	case !pct.Equal(decimal.NewFromInt(100)):
		style = mutedStyle
	}
	return fmt.Sprintf("[%s] %s", style.Render(bar), FormatPercent(pct))
}

// RenderKV renders an aligned label/value line.
func RenderKV(label, value string, labelWidth int) string {
	return fmt.Sprintf("  %s  %s", mutedStyle.Render(fmt.Sprintf("%-*s", labelWidth, label)), valueStyle.Render(value))
}

// RenderWarning renders a highlighted warning line.
func RenderWarning(msg string) string {
	return "  " + warnStyle.Render(msg)
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
