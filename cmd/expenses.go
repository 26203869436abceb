package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/model"
	"github.com/theirongolddev/aurion/internal/store"
	"github.com/theirongolddev/aurion/internal/tracker"

	"github.com/spf13/cobra"
)

var expensesCmd = newRecordCmd(recordCommand{
	use:        "expenses",
	short:      "List, add, remove or toggle partner expenses",
	collection: model.Expenses,
	flags: []formFlag{
		{name: "partner", field: "partnerName", usage: "Partner on the roster"},
		{name: "name", field: "workName", usage: "What the expense was for"},
		{name: "amount", field: "amount", usage: "Amount in rupees"},
		{name: "date", field: "date", usage: "Date (YYYY-MM-DD, default today)"},
	},
	table: expensesTable,
})

var expensesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip an expense between Pending and Completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpensesToggle,
}

func init() {
	expensesCmd.AddCommand(expensesToggleCmd)
	rootCmd.AddCommand(expensesCmd)
}

func expensesTable(snap model.Snapshot) cli.Table {
	t := cli.Table{
		Title:    "Expenses",
		Headers:  []string{"ID", "Partner", "Expense", "Date", "Status", "Amount"},
		TextCols: 5,
	}
	for _, e := range snap.Expenses {
		t.Rows = append(t.Rows, []string{
			cli.ShortID(e.ID),
			e.PartnerName,
			cli.Truncate(e.WorkName, 28),
			e.Date,
			string(e.Status.Normalize()),
			cli.FormatRupees(e.Amount),
		})
	}
	return t
}

func runExpensesToggle(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		snap, err := st.List(ctx, model.Expenses)
		if err != nil {
			return fmt.Errorf("listing expenses: %w", err)
		}
		id, err := resolveID(snap, args[0])
		if err != nil {
			return err
		}

		rec, err := st.Get(ctx, model.Expenses, id)
		if err != nil {
			return fmt.Errorf("loading expense: %w", err)
		}
		next := tracker.ToggleStatus(rec.(model.Expense))
		if err := st.Update(ctx, model.Expenses, id, map[string]any{"status": string(next)}); err != nil {
			return fmt.Errorf("toggling expense: %w", err)
		}

		if flagJSON {
			return printJSON(cmd.OutOrStdout(), map[string]string{"id": id, "status": string(next)})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s is now %s\n", cli.ShortID(id), next)
		return nil
	})
}
