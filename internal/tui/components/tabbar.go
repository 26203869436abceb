package components

import (
	"strings"

	"github.com/theirongolddev/aurion/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name
}

// Tabs defines all available tabs, in number-key order.
var Tabs = []Tab{
	{Name: "Funds", Key: 'f', KeyPos: 0},
	{Name: "Cost", Key: 'c', KeyPos: 0},
	{Name: "Work", Key: 'w', KeyPos: 0},
	{Name: "Founders", Key: 'o', KeyPos: 1},
	{Name: "Expenses", Key: 'e', KeyPos: 0},
}

// tabPadding is the horizontal padding on each side of a tab label.
const tabPadding = 1

func renderTab(tab Tab, active bool) string {
	t := theme.Active
	pad := lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", tabPadding))

	if active {
		style := lipgloss.NewStyle().
			Foreground(t.AccentBright).
			Background(t.SurfaceHover).
			Bold(true)
		return style.Render(strings.Repeat(" ", tabPadding) + tab.Name + strings.Repeat(" ", tabPadding))
	}

	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimKeyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	before := tab.Name[:tab.KeyPos]
	key := string(tab.Name[tab.KeyPos])
	after := tab.Name[tab.KeyPos+1:]
	return pad +
		inactiveStyle.Render(before) +
		dimKeyStyle.Render("[") + keyStyle.Render(key) + dimKeyStyle.Render("]") +
		inactiveStyle.Render(after) +
		pad
}

// TabVisualWidth returns the rendered width of a tab. Mouse hit-testing relies
// on it matching RenderTabBar exactly.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the single-row tab bar with the given active index.
// Tabs are separated by one column.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		parts = append(parts, renderTab(tab, i == activeIdx))
	}

	row := lipgloss.NewStyle().Background(t.Surface).Width(width)
	return row.Render(strings.Join(parts, sep))
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
