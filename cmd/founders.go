package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/aurion/internal/allocation"
	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/store"

	"github.com/spf13/cobra"
)

var foundersCmd = &cobra.Command{
	Use:   "founders",
	Short: "Partner grand totals and per-project profit shares",
	Args:  cobra.NoArgs,
	RunE:  runFounders,
}

func init() {
	rootCmd.AddCommand(foundersCmd)
}

func runFounders(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		l, err := st.Load(ctx)
		if err != nil {
			return fmt.Errorf("loading ledger: %w", err)
		}
		roster := appCfg.PartnerRoster()
		totals := allocation.GrandTotals(l, roster)
		breakdowns := allocation.Breakdown(l, roster)

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, map[string]any{
				"grandTotals": totals,
				"projects":    breakdowns,
			})
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.RenderTitle("FOUNDERS  Grand Total"))
		fmt.Fprintln(out)

		grand := cli.Table{
			Headers: []string{"Partner", "Project Shares", "Expenses", "Grand Total"},
		}
		for _, g := range totals {
			grand.Rows = append(grand.Rows, []string{
				g.Name,
				cli.FormatRupees(g.ProjectShares),
				cli.FormatRupees(g.Expenses),
				cli.FormatRupees(g.Total),
			})
		}
		fmt.Fprint(out, cli.RenderTable(grand))

		for _, pb := range breakdowns {
			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.RenderKV(pb.Project.Name, "profit "+cli.FormatRupees(pb.Profit), 0))
			fmt.Fprintln(out, cli.RenderKV("Fixed pool", cli.FormatRupees(pb.FixedPool), 12))
			fmt.Fprintln(out, cli.RenderKV("Work pool", cli.FormatRupees(pb.WorkPool), 12))

			card := cli.Table{
				Headers: []string{"Partner", "Contribution", "Fixed (5%)", "Work (45%)", "Subtotal"},
			}
			for _, s := range pb.Shares {
				card.Rows = append(card.Rows, []string{
					s.Name,
					cli.FormatContribution(s.Percent),
					cli.FormatRupees(s.Fixed),
					cli.FormatRupees(s.Work),
					cli.FormatRupees(s.Subtotal),
				})
			}
			fmt.Fprint(out, cli.RenderTable(card))
		}
		return nil
	})
}
