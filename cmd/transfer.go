package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/history"
	"github.com/Mohsinsiddi/w3dapp/internal/transfer"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	transferWallet string
	transferYes    bool
)

var transferCmd = &cobra.Command{
	Use:   "transfer <recipient> <amount>",
	Short: "Transfer tokens from the selected account",
	Long: `Submit an ERC-20 transfer of <amount> whole tokens (decimals allowed) to
<recipient> through the wallet, wait for it to settle and report the outcome:
"Transaction confirmed", "Transaction rejected" or "Error".

The wallet shows the transaction and asks before signing unless --yes is set.

Examples:
  w3dapp transfer 0xc3c6f796335f9d1cceeb4f0ad92a21d6ad48a117 2
  w3dapp transfer 0xc3c6...a117 0.5 --wallet alice --yes`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, _, err := newFlow()
		if err != nil {
			return err
		}
		ext, err := newExtension(transferWallet)
		if err != nil {
			return err
		}
		defer ext.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), config.TxConfirmTimeout)
		defer cancel()
		go answerRequests(ctx, ext, transferYes)

		session := transfer.NewSession(ext.Provider(cliOrigin))
		if _, err := session.Connect(ctx); err != nil {
			return err
		}

		var spin *ui.Spinner
		if transferYes {
			spin = ui.NewSpinner("Waiting for the transfer to settle...")
			spin.Start()
		}
		res, err := flow.SubmitTransfer(ctx, session.Provider(), transfer.Request{Recipient: args[0], Amount: args[1]})
		if spin != nil {
			spin.Stop()
		}
		if err != nil {
			return err
		}

		network := ext.Network()
		recordTransfer(res, network.Name)

		pairs := [][2]string{
			{"Outcome", ui.Outcome(res.Outcome.String(), res.Status)},
			{"Network", ui.ChainName(network.Name)},
			{"Elapsed", res.Elapsed.Round(time.Millisecond).String()},
		}
		if res.TxHash != (common.Hash{}) {
			pairs = append(pairs, [2]string{"Tx", ui.Addr(res.TxHash.Hex())})
			if url := network.TxURL(res.TxHash.Hex()); url != "" {
				pairs = append(pairs, [2]string{"Explorer", ui.Meta(url)})
			}
		}
		fmt.Println(ui.KeyValueBlock("Transfer", pairs))

		if res.Outcome == transfer.OutcomeError && res.Err != nil {
			log.Debug().Err(res.Err).Msg("Transfer failed")
			fmt.Println(ui.Meta(res.Err.Error()))
		}
		return nil
	},
}

// recordTransfer appends the result to the history store. The store is
// locked while `w3dapp serve` runs; that only costs the record.
func recordTransfer(res transfer.Result, network string) {
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		log.Warn().Err(err).Msg("History unavailable, transfer not recorded")
		return
	}
	defer store.Close()
	if err := store.Put(context.Background(), history.FromResult(res, network)); err != nil {
		log.Warn().Err(err).Msg("Recording transfer failed")
	}
}

func init() {
	transferCmd.Flags().StringVar(&transferWallet, "wallet", "", "account name (default: the default account)")
	transferCmd.Flags().BoolVarP(&transferYes, "yes", "y", false, "sign without asking")
}
