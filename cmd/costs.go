package cmd

import (
	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/model"
)

var costsCmd = newRecordCmd(recordCommand{
	use:        "costs",
	short:      "List, add or remove project costs",
	collection: model.Costs,
	flags: []formFlag{
		{name: "project", field: "projectName", usage: "Project the cost is booked against"},
		{name: "amount", field: "amount", usage: "Amount in rupees"},
		{name: "category", field: "category", usage: "Cost category"},
		{name: "date", field: "date", usage: "Date (YYYY-MM-DD, default today)"},
	},
	table: costsTable,
})

func init() {
	rootCmd.AddCommand(costsCmd)
}

func costsTable(snap model.Snapshot) cli.Table {
	t := cli.Table{
		Title:    "Costs",
		Headers:  []string{"ID", "Project", "Category", "Date", "Status", "Amount"},
		TextCols: 5,
	}
	for _, c := range snap.Costs {
		t.Rows = append(t.Rows, []string{
			cli.ShortID(c.ID),
			cli.Truncate(c.ProjectName, 28),
			cli.Truncate(c.Category, 20),
			c.Date,
			c.StatusLabel(),
			cli.FormatRupees(c.Amount),
		})
	}
	return t
}
