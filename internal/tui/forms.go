package tui

import (
	"fmt"
	"slices"

	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/model"
	"github.com/theirongolddev/aurion/internal/tracker"
	"github.com/theirongolddev/aurion/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// formInputs holds the values bound to the huh fields. It lives on the heap
// so the bindings survive App being copied through Update.
type formInputs struct {
	fundName    string
	fundDate    string
	fundRevenue string

	costProject  string
	costCategory string
	costDate     string
	costAmount   string

	workProject    string
	workPartner    string
	workPercentage string

	expensePartner string
	expenseName    string
	expenseAmount  string
	expenseDate    string

	confirm bool
}

// clearTransient resets the inputs that should not carry over to the next
// entry on tab. Selected project, partner and expense date persist.
func (in *formInputs) clearTransient(tab int) {
	switch tab {
	case tabFunds:
		in.fundName, in.fundDate, in.fundRevenue = "", "", ""
	case tabCost:
		in.costCategory, in.costDate, in.costAmount = "", "", ""
	case tabWork:
		in.workPercentage = ""
	case tabExpenses:
		in.expenseName, in.expenseAmount = "", ""
	}
}

func (a App) formWidth() int {
	return max(min(a.contentWidth()-8, 72), 30)
}

var formTitles = map[int]string{
	tabFunds:    "Add Fund",
	tabCost:     "Add Cost",
	tabWork:     "Add Work Attribution",
	tabExpenses: "Add Expense",
}

// projectField is a select over existing projects. Costs and attributions
// join projects by name, so a selection that no longer exists is dropped.
func (a App) projectField(value *string) huh.Field {
	names := a.ledger.ProjectNames()
	if !slices.Contains(names, *value) {
		*value = ""
	}
	return huh.NewSelect[string]().
		Title("Project").
		Options(huh.NewOptions(names...)...).
		Value(value)
}

func (a App) partnerField(value *string) huh.Field {
	return huh.NewSelect[string]().
		Title("Partner").
		Options(huh.NewOptions([]string(a.roster)...)...).
		Value(value)
}

func dateField(value *string) huh.Field {
	return huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD (empty for today)").Value(value)
}

func (a App) openAddForm() (tea.Model, tea.Cmd) {
	in := a.inputs

	if (a.activeTab == tabCost || a.activeTab == tabWork) && len(a.ledger.Projects) == 0 {
		a.alert = tracker.MsgNoProjects
		return a, nil
	}

	var fields []huh.Field
	switch a.activeTab {
	case tabFunds:
		fields = []huh.Field{
			huh.NewInput().Title("Project Name").Value(&in.fundName),
			dateField(&in.fundDate),
			huh.NewInput().Title("Revenue (Rs.)").Placeholder("0").Value(&in.fundRevenue),
		}
	case tabCost:
		fields = []huh.Field{
			a.projectField(&in.costProject),
			huh.NewInput().Title("Category").Placeholder("e.g. Hosting").Value(&in.costCategory),
			dateField(&in.costDate),
			huh.NewInput().Title("Amount (Rs.)").Placeholder("0").Value(&in.costAmount),
		}
	case tabWork:
		fields = []huh.Field{
			a.projectField(&in.workProject),
			a.partnerField(&in.workPartner),
			huh.NewInput().Title("Percentage").Placeholder("1-100").Value(&in.workPercentage),
		}
	case tabExpenses:
		fields = []huh.Field{
			a.partnerField(&in.expensePartner),
			huh.NewInput().Title("Expense Name").Value(&in.expenseName),
			huh.NewInput().Title("Amount (Rs.)").Placeholder("0").Value(&in.expenseAmount),
			dateField(&in.expenseDate),
		}
	default:
		return a, nil
	}

	a.form = huh.NewForm(huh.NewGroup(fields...)).
		WithShowHelp(true).
		WithWidth(a.formWidth())
	a.formKind = formAdd
	a.notice = ""
	return a, a.form.Init()
}

// selected returns the collection and a short description of the record
// under the cursor on the active tab.
func (a App) selected() (model.Collection, string, string, bool) {
	i := a.cursors[a.activeTab]
	switch a.activeTab {
	case tabFunds:
		if i < len(a.ledger.Projects) {
			p := a.ledger.Projects[i]
			return model.Funds, p.ID, fmt.Sprintf("%s · %s", p.Name, cli.FormatRupees(p.Revenue)), true
		}
	case tabCost:
		if i < len(a.ledger.Costs) {
			c := a.ledger.Costs[i]
			return model.Costs, c.ID, fmt.Sprintf("%s · %s · %s", c.ProjectName, c.Category, cli.FormatRupees(c.Amount)), true
		}
	case tabWork:
		if i < len(a.ledger.WorkAttributions) {
			w := a.ledger.WorkAttributions[i]
			return model.WorkAttributions, w.ID, fmt.Sprintf("%s · %s · %s", w.ProjectName, w.FounderName, cli.FormatPercent(w.Percentage)), true
		}
	case tabExpenses:
		if i < len(a.ledger.Expenses) {
			e := a.ledger.Expenses[i]
			return model.Expenses, e.ID, fmt.Sprintf("%s · %s · %s", e.PartnerName, e.WorkName, cli.FormatRupees(e.Amount)), true
		}
	}
	return "", "", "", false
}

func (a App) requestDelete() (tea.Model, tea.Cmd) {
	c, id, desc, ok := a.selected()
	if !ok {
		return a, nil
	}

	a.inputs.confirm = false
	a.deleting = pendingDelete{collection: c, id: id}
	a.form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(tracker.MsgConfirmDelete).
			Description(desc).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&a.inputs.confirm),
	)).WithShowHelp(true).WithWidth(a.formWidth())
	a.formKind = formConfirmDelete
	a.notice = ""
	return a, a.form.Init()
}

func (a App) toggleSelected() (tea.Model, tea.Cmd) {
	i := a.cursors[tabExpenses]
	if i >= len(a.ledger.Expenses) {
		return a, nil
	}
	e := a.ledger.Expenses[i]
	next := tracker.ToggleStatus(e)
	return a, updateCmd(a.store, model.Expenses, e.ID, map[string]any{"status": string(next)})
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		switch a.formKind {
		case formConfirmDelete:
			return a.finishConfirm(a.inputs.confirm)
		default:
			return a.submitForm()
		}
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

func (a *App) closeForm() {
	a.form = nil
	a.formKind = formNone
	a.deleting = pendingDelete{}
}

// submitForm validates the add form of the active tab. Invalid input opens
// an alert and leaves the store untouched.
func (a App) submitForm() (tea.Model, tea.Cmd) {
	a.closeForm()
	in := a.inputs
	now := a.now()

	var (
		rec model.Record
		err error
	)
	switch a.activeTab {
	case tabFunds:
		rec, err = asRecord(tracker.NewProject(in.fundName, in.fundDate, in.fundRevenue, now))
	case tabCost:
		rec, err = asRecord(tracker.NewCost(in.costProject, in.costCategory, in.costDate, in.costAmount, now))
	case tabWork:
		rec, err = asRecord(tracker.NewWorkAttribution(in.workProject, in.workPartner, in.workPercentage, a.roster, now))
	case tabExpenses:
		rec, err = asRecord(tracker.NewExpense(in.expensePartner, in.expenseName, in.expenseAmount, in.expenseDate, a.roster, now))
	default:
		return a, nil
	}
	if err != nil {
		a.alert = err.Error()
		return a, nil
	}

	in.clearTransient(a.activeTab)
	return a, createCmd(a.store, rec)
}

// finishConfirm deletes the pending record when ok. Declining does nothing.
func (a App) finishConfirm(ok bool) (tea.Model, tea.Cmd) {
	target := a.deleting
	a.closeForm()
	if !ok || target.id == "" {
		a.notice = "Delete cancelled"
		return a, nil
	}
	return a, deleteCmd(a.store, target.collection, target.id)
}

func asRecord[T model.Record](r T, err error) (model.Record, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (a App) renderForm(cw int) string {
	title := formTitles[a.activeTab]
	if a.formKind == formConfirmDelete {
		title = "Delete Entry"
	}
	w := min(a.formWidth()+4, cw)
	return "\n" + components.ContentCard(title, a.form.View(), w)
}
