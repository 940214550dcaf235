package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3dapp/internal/history"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent transfers, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println(ui.Meta("No transfers yet."))
			return nil
		}

		t := ui.NewTable(
			ui.Column{Title: "When", Width: 19},
			ui.Column{Title: "Network", Width: 10},
			ui.Column{Title: "Recipient", Width: 16},
			ui.Column{Title: "Amount", Width: 12},
			ui.Column{Title: "Status", Width: 22},
			ui.Column{Title: "Tx", Width: 16},
		)
		for _, r := range records {
			tx := ""
			if r.TxHash != "" {
				tx = ui.TruncateAddr(r.TxHash)
			}
			t.AddRow(
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.Network,
				ui.TruncateAddr(r.Recipient),
				r.Amount,
				r.Status,
				tx,
			)
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d transfer(s)", len(records))))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of transfers to show (0 for all)")
}
