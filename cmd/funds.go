package cmd

import (
	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/model"
)

var fundsCmd = newRecordCmd(recordCommand{
	use:        "funds",
	short:      "List, add or remove projects and their revenue",
	collection: model.Funds,
	flags: []formFlag{
		{name: "name", field: "name", usage: "Project name"},
		{name: "revenue", field: "revenue", usage: "Revenue in rupees"},
		{name: "date", field: "date", usage: "Date (YYYY-MM-DD, default today)"},
	},
	table: fundsTable,
})

func init() {
	rootCmd.AddCommand(fundsCmd)
}

func fundsTable(snap model.Snapshot) cli.Table {
	t := cli.Table{
		Title:    "Funds",
		Headers:  []string{"ID", "Project", "Date", "Revenue"},
		TextCols: 3,
	}
	for _, p := range snap.Projects {
		t.Rows = append(t.Rows, []string{
			cli.ShortID(p.ID),
			cli.Truncate(p.Name, 32),
			p.Date,
			cli.FormatRupees(p.Revenue),
		})
	}
	return t
}
