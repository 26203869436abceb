package cmd

import (
	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/model"
)

var workCmd = newRecordCmd(recordCommand{
	use:        "work",
	short:      "List, add or remove partner work attributions",
	collection: model.WorkAttributions,
	flags: []formFlag{
		{name: "project", field: "projectName", usage: "Project name"},
		{name: "partner", field: "founderName", usage: "Partner on the roster"},
		{name: "percentage", field: "percentage", usage: "Share of the work pool, 1-100"},
	},
	table: workTable,
})

func init() {
	rootCmd.AddCommand(workCmd)
}

func workTable(snap model.Snapshot) cli.Table {
	t := cli.Table{
		Title:    "Work Attributions",
		Headers:  []string{"ID", "Project", "Partner", "Date", "Percentage"},
		TextCols: 4,
	}
	for _, w := range snap.WorkAttributions {
		t.Rows = append(t.Rows, []string{
			cli.ShortID(w.ID),
			cli.Truncate(w.ProjectName, 28),
			w.FounderName,
			w.Date,
			cli.FormatPercent(w.Percentage),
		})
	}
	return t
}
