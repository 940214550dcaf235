package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/transfer"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var balanceWallet string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the token balance of the selected account",
	Long: `Connect to the wallet and read the configured token's balance for the
selected account on the wallet's network.

Examples:
  w3dapp balance
  w3dapp balance --wallet alice`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, _, err := newFlow()
		if err != nil {
			return err
		}
		ext, err := newExtension(balanceWallet)
		if err != nil {
			return err
		}
		defer ext.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCDialTimeout)
		defer cancel()
		go answerRequests(ctx, ext, true)

		session := transfer.NewSession(ext.Provider(cliOrigin))
		if _, err := session.Connect(ctx); err != nil {
			return err
		}

		spin := ui.NewSpinner(fmt.Sprintf("Fetching balance on %s...", ui.ChainName(ext.Network().Name)))
		spin.Start()
		bal, err := flow.FetchBalance(ctx, session.Provider())
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("Balance", [][2]string{
			{"Account", ui.Addr(bal.Account.Hex())},
			{"Token", ui.Addr(flow.Config().ContractAddress.Hex())},
			{"Network", ui.ChainName(ext.Network().Name)},
			{"Balance", ui.Val(bal.Formatted)},
			{"Raw", ui.Meta(bal.Raw.String())},
		}))
		return nil
	},
}

func init() {
	balanceCmd.Flags().StringVar(&balanceWallet, "wallet", "", "account name (default: the default account)")
}
