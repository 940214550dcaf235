package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect the configured ERC-20 token",
}

var tokenNameCmd = &cobra.Command{
	Use:   "name",
	Short: "Read the token name over the read-only RPC",
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, n, err := newFlow()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCDialTimeout)
		defer cancel()

		name, err := flow.FetchTokenName(ctx)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Token", [][2]string{
			{"Name", ui.Val(name)},
			{"Address", ui.Addr(flow.Config().ContractAddress.Hex())},
			{"Network", ui.ChainName(n.Name)},
			{"RPC", flow.Config().RPCEndpoint},
		}))
		return nil
	},
}

var tokenImportCmd = &cobra.Command{
	Use:   "import <address>...",
	Short: "Read symbol and decimals of tokens on the wallet's network",
	Long: `Import one or more ERC-20 tokens into the wallet the way its "import
tokens" form does, then list every token imported on the network.

Examples:
  w3dapp token import 0x779877A7B0D9E8603169DdbD7836e478b4624789
  w3dapp token import --network bnbt 0x84b9B910527Ad5C03A9Ca831909E21e236EA7b06`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ext, err := newExtension("")
		if err != nil {
			return err
		}
		defer ext.Close()
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCDialTimeout)
		defer cancel()

		for _, addr := range args {
			if _, err := ext.ImportToken(ctx, addr); err != nil {
				return fmt.Errorf("%s: %w", addr, err)
			}
		}

		tokens := ext.Tokens()
		t := ui.NewTable(
			ui.Column{Title: "Address", Width: 44},
			ui.Column{Title: "Symbol", Width: 10},
			ui.Column{Title: "Decimals", Width: 8},
		)
		for _, td := range tokens {
			t.AddRow(td.ContractAddress, td.Symbol, td.Decimals)
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d tokens on %s", len(tokens), ext.Network().Name)))
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenNameCmd, tokenImportCmd)
}
