// Package tui provides the interactive Bubble Tea dashboard for aurion.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/theirongolddev/aurion/internal/allocation"
	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/model"
	"github.com/theirongolddev/aurion/internal/tui/components"
	"github.com/theirongolddev/aurion/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

// Store is the record store the dashboard reads from and writes to.
type Store interface {
	Subscribe(c model.Collection) (<-chan model.Snapshot, func())
	Create(ctx context.Context, rec model.Record) (string, error)
	Delete(ctx context.Context, c model.Collection, id string) error
	Update(ctx context.Context, c model.Collection, id string, fields map[string]any) error
}

// Tab indexes, matching components.Tabs.
const (
	tabFunds = iota
	tabCost
	tabWork
	tabFounders
	tabExpenses
)

// SnapshotMsg carries the latest contents of one collection.
type SnapshotMsg struct {
	Snapshot model.Snapshot
}

type subscriptionClosedMsg struct {
	Collection model.Collection
}

// MutationMsg reports the outcome of a store call started by the dashboard.
type MutationMsg struct {
	Op         string
	Collection model.Collection
	ID         string
	Err        error
}

type formKind int

const (
	formNone formKind = iota
	formAdd
	formConfirmDelete
)

type pendingDelete struct {
	collection model.Collection
	id         string
}

// App is the root Bubble Tea model.
type App struct {
	store  Store
	roster model.Roster
	now    func() time.Time
	subs   *subscriptions

	// Data: latest snapshot of every collection.
	ledger model.Ledger
	loaded map[model.Collection]bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	cursors   [5]int

	// Overlays
	inputs   *formInputs
	form     *huh.Form
	formKind formKind
	deleting pendingDelete
	alert    string
	notice   string

	spinner spinner.Model
}

const (
	minTerminalWidth = 60
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	mutationTimeout  = 10 * time.Second
)

// NewApp creates the dashboard and subscribes to every collection. Call Close
// once the program exits.
func NewApp(st Store, roster model.Roster) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		store:   st,
		roster:  roster,
		now:     time.Now,
		subs:    subscribeAll(st),
		loaded:  make(map[model.Collection]bool, len(model.Collections)),
		inputs:  &formInputs{},
		spinner: sp,
	}
}

// Close releases the store subscriptions. It is safe to call more than once.
func (a App) Close() {
	a.subs.close()
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
	}
	for _, c := range model.Collections {
		cmds = append(cmds, a.subs.wait(c))
	}
	return tea.Batch(cmds...)
}

func (a App) isLoaded() bool {
	return len(a.loaded) == len(model.Collections)
}

func (a App) quit() (tea.Model, tea.Cmd) {
	a.subs.close()
	return a, tea.Quit
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth())
		}
		return a, nil

	case SnapshotMsg:
		snap := msg.Snapshot
		a.ledger = a.ledger.Apply(snap)
		a.loaded[snap.Collection] = true
		a.clampCursors()
		return a, a.subs.wait(snap.Collection)

	case subscriptionClosedMsg:
		return a, nil

	case MutationMsg:
		if msg.Err != nil {
			log.Error().Err(msg.Err).
				Str("op", msg.Op).
				Str("collection", msg.Collection.String()).
				Str("id", msg.ID).
				Msg("store mutation failed")
			a.alert = fmt.Sprintf("Could not %s entry.\n\n%v", msg.Op, msg.Err)
			return a, nil
		}
		a.notice = mutationNotice(msg)
		return a, nil

	case spinner.TickMsg:
		if !a.isLoaded() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.MouseMsg:
		if !a.isLoaded() || a.showHelp || a.alert != "" || a.form != nil {
			return a, nil
		}
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			// Tab bar is the first line
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	// Forward unhandled messages to the open form (cursor blinks, etc.)
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a.quit()
	}

	// Alerts block everything until dismissed.
	if a.alert != "" {
		switch key {
		case "enter", "esc", " ":
			a.alert = ""
		}
		return a, nil
	}

	if a.form != nil {
		if key == "esc" {
			a.closeForm()
			return a, nil
		}
		return a.updateForm(msg)
	}

	if !a.isLoaded() {
		return a, nil
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a.quit()
	case "1", "2", "3", "4", "5":
		a.activeTab = int(key[0] - '1')
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "j", "down":
		a.moveCursor(1)
		return a, nil
	case "k", "up":
		a.moveCursor(-1)
		return a, nil
	case "g", "home":
		a.cursors[a.activeTab] = 0
		return a, nil
	case "G", "end":
		a.cursors[a.activeTab] = max(a.listLen(a.activeTab)-1, 0)
		return a, nil
	case "a", "n":
		if a.activeTab != tabFounders {
			return a.openAddForm()
		}
		return a, nil
	case "d", "delete":
		return a.requestDelete()
	case "t", " ":
		if a.activeTab == tabExpenses {
			return a.toggleSelected()
		}
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if tab := components.TabIdxByKey(msg.Runes[0]); tab >= 0 {
			a.activeTab = tab
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	n := a.listLen(a.activeTab)
	c := a.cursors[a.activeTab] + delta
	a.cursors[a.activeTab] = min(max(c, 0), max(n-1, 0))
}

// listLen is the number of selectable rows on a tab. The founders tab
// scrolls by line instead.
func (a App) listLen(tab int) int {
	switch tab {
	case tabFunds:
		return len(a.ledger.Projects)
	case tabCost:
		return len(a.ledger.Costs)
	case tabWork:
		return len(a.ledger.WorkAttributions)
	case tabExpenses:
		return len(a.ledger.Expenses)
	case tabFounders:
		return len(a.ledger.Projects)*(len(a.roster)+6) + len(a.roster) + 8
	}
	return 0
}

func (a *App) clampCursors() {
	for tab := range a.cursors {
		a.cursors[tab] = min(a.cursors[tab], max(a.listLen(tab)-1, 0))
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.isLoaded() {
		return a.viewLoading()
	}

	if a.alert != "" {
		return a.viewAlert()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  aurion needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ AURION"))
	b.WriteString(subtitleStyle.Render(" · Financial Tracker"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(fmt.Sprintf(" Loading ledger (%d/%d collections)",
		len(a.loaded), len(model.Collections))))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewAlert() string {
	t := theme.Active
	w := min(a.width-4, 64)

	bodyStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(components.CardInnerWidth(w))
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	body := bodyStyle.Render(a.alert) + "\n\n" + hintStyle.Render("Press Enter to continue")
	card := components.AlertCard("◈ Attention", body, w)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"1-5", "Jump to tab"},
			{"f c w o e", "Funds, Cost, Work, Founders, Expenses"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move selection / scroll"},
			{"g G", "First / Last row"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"a", "Add entry"},
			{"d", "Delete selected entry"},
			{"t", "Toggle expense status"},
			{"Esc", "Close form"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderHeader(w int) string {
	t := theme.Active
	summary := allocation.Summarize(a.ledger)

	brandStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	profitStyle := valueStyle.Foreground(t.Signed(summary.TotalProfit.Sign()))
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	line := brandStyle.Render(" ◈ AURION") +
		labelStyle.Render(" Financial Tracker") +
		spaceStyle.Render("   ") +
		labelStyle.Render("Revenue ") + valueStyle.Render(cli.FormatRupees(summary.TotalRevenue)) +
		spaceStyle.Render("   ") +
		labelStyle.Render("Total Profit ") + profitStyle.Render(cli.FormatRupees(summary.TotalProfit))

	return components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(line)
}

func (a App) renderStatusBar(w int) string {
	hints := "[?]help  [q]uit"
	switch a.activeTab {
	case tabFounders:
		hints = "[j/k]scroll  " + hints
	case tabExpenses:
		hints = "[a]dd  [d]elete  [t]oggle  " + hints
	default:
		hints = "[a]dd  [d]elete  " + hints
	}
	if a.form != nil {
		hints = "[esc]cancel  [enter]next"
	}

	count := ""
	if a.activeTab != tabFounders {
		count = cli.FormatCount(a.listLen(a.activeTab)) + " entries"
	}
	return components.RenderStatusBar(w, hints, a.notice, count)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := a.renderHeader(w)
	statusBar := a.renderStatusBar(w)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.form != nil:
		content = a.renderForm(cw)
	case a.activeTab == tabFunds:
		content = a.renderFundsTab(cw)
	case a.activeTab == tabCost:
		content = a.renderCostTab(cw)
	case a.activeTab == tabWork:
		content = a.renderWorkTab(cw)
	case a.activeTab == tabFounders:
		content = a.renderFoundersTab(cw, contentH)
	case a.activeTab == tabExpenses:
		content = a.renderExpensesTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Subscriptions ──────────────────────────────────────────────

// subscriptions holds one store subscription per collection.
type subscriptions struct {
	chans   map[model.Collection]<-chan model.Snapshot
	release []func()
	once    sync.Once
}

func subscribeAll(st Store) *subscriptions {
	s := &subscriptions{chans: make(map[model.Collection]<-chan model.Snapshot, len(model.Collections))}
	for _, c := range model.Collections {
		ch, unsubscribe := st.Subscribe(c)
		s.chans[c] = ch
		s.release = append(s.release, unsubscribe)
	}
	return s
}

// wait blocks until the next snapshot of c arrives.
func (s *subscriptions) wait(c model.Collection) tea.Cmd {
	ch := s.chans[c]
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{Collection: c}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

func (s *subscriptions) close() {
	s.once.Do(func() {
		for _, release := range s.release {
			release()
		}
	})
}

// ─── Mutations ──────────────────────────────────────────────────

func createCmd(st Store, rec model.Record) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		id, err := st.Create(ctx, rec)
		return MutationMsg{Op: "add", Collection: rec.Collection(), ID: id, Err: err}
	}
}

func deleteCmd(st Store, c model.Collection, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return MutationMsg{Op: "delete", Collection: c, ID: id, Err: st.Delete(ctx, c, id)}
	}
}

func updateCmd(st Store, c model.Collection, id string, fields map[string]any) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return MutationMsg{Op: "update", Collection: c, ID: id, Err: st.Update(ctx, c, id, fields)}
	}
}

func mutationNotice(msg MutationMsg) string {
	switch msg.Op {
	case "add":
		return "Entry added"
	case "delete":
		return "Entry deleted"
	default:
		return "Entry updated"
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
