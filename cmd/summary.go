package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/aurion/internal/allocation"
	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/store"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Total revenue and profit with the per-project breakdown",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		l, err := st.Load(ctx)
		if err != nil {
			return fmt.Errorf("loading ledger: %w", err)
		}
		summary := allocation.Summarize(l)
		rows := allocation.ProjectRows(l)
		coverage := allocation.AttributionCoverage(l)

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, map[string]any{
				"totalRevenue": summary.TotalRevenue,
				"totalProfit":  summary.TotalProfit,
				"funds":        rows,
				"coverage":     coverage,
			})
		}

		if len(rows) == 0 {
			fmt.Fprintln(out, "\n  No funds yet. Add one with `aurion funds add`.")
			return nil
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.RenderTitle("AURION  Financial Summary"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.RenderKV("Revenue", cli.FormatRupees(summary.TotalRevenue), 12))
		fmt.Fprintln(out, cli.RenderKV("Total Profit", cli.FormatRupees(summary.TotalProfit), 12))
		fmt.Fprintln(out)

		funds := cli.Table{
			Headers: []string{"Project", "Revenue", "Cost", "Profit", "Work 45%", "Fixed 5%", "Reserve 40%"},
		}
		for _, r := range rows {
			funds.Rows = append(funds.Rows, []string{
				cli.Truncate(r.Project.Name, 28),
				cli.FormatRupees(r.Project.Revenue),
				cli.FormatRupees(r.Cost),
				cli.FormatRupees(r.Profit),
				cli.FormatRupees(r.Pools.Work),
				cli.FormatRupees(r.Pools.Fixed),
				cli.FormatRupees(r.Pools.Reserve),
			})
		}
		fmt.Fprint(out, cli.RenderTable(funds))

		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Work attribution")
		for _, c := range coverage {
			fmt.Fprintln(out, cli.RenderKV(cli.Truncate(c.ProjectName, 20), cli.RenderCoverageBar(c.Percent, 24), 20))
		}
		for _, c := range coverage {
			switch {
			case c.Over():
				fmt.Fprintln(out, cli.RenderWarning(fmt.Sprintf("%s: %s of the work pool attributed (over 100%%)", c.ProjectName, cli.FormatPercent(c.Percent))))
			case !c.Complete():
				fmt.Fprintln(out, cli.RenderWarning(fmt.Sprintf("%s: only %s of the work pool attributed", c.ProjectName, cli.FormatPercent(c.Percent))))
			}
		}
		fmt.Fprintln(out)
		return nil
	})
}
