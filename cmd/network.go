package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var (
	netAddName     string
	netAddRPC      string
	netAddChainID  int64
	netAddSymbol   string
	netAddExplorer string
	netAddTestnet  bool
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and custom networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := newRegistry()
		t := ui.NewTable(
			ui.Column{Title: "Name", Width: 14},
			ui.Column{Title: "Display", Width: 22},
			ui.Column{Title: "Chain ID", Width: 10},
			ui.Column{Title: "Symbol", Width: 10},
			ui.Column{Title: "Testnet", Width: 8},
		)
		for _, n := range reg.All() {
			name := n.Name
			if n.Name == cfg.DefaultNetwork {
				name += " *"
			}
			testnet := ""
			if n.IsTestnet {
				testnet = "yes"
			}
			t.AddRow(name, n.DisplayName, strconv.FormatInt(n.ChainID, 10), n.Symbol, testnet)
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d networks, * marks the default", len(reg.All()))))
		return nil
	},
}

var networkAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a custom network",
	Long: `Add a custom EVM network. The RPC endpoint is dialled first and must
report the chain id given with --chain-id.

Example:
  w3dapp network add --name bnbt --rpc https://data-seed-prebsc-1-s1.binance.org:8545/ \
    --chain-id 97 --symbol BNB --explorer https://testnet.bscscan.com --testnet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if netAddName == "" || netAddRPC == "" || netAddChainID <= 0 {
			return fmt.Errorf("--name, --rpc and --chain-id are required")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCDialTimeout)
		defer cancel()
		spin := ui.NewSpinner("Checking " + netAddRPC + "...")
		spin.Start()
		got, err := remoteChainID(ctx, netAddRPC)
		spin.Stop()
		if err != nil {
			return err
		}
		if got != netAddChainID {
			return fmt.Errorf("RPC reports chain id %d, not %d", got, netAddChainID)
		}

		entry := config.NetworkEntry{
			Name:          netAddName,
			DisplayName:   netAddName,
			RPCURL:        netAddRPC,
			ChainID:       netAddChainID,
			Symbol:        netAddSymbol,
			BlockExplorer: netAddExplorer,
			IsTestnet:     netAddTestnet,
		}
		if _, err := chain.NewRegistry().GetByChainID(netAddChainID); err == nil {
			return fmt.Errorf("%w: chain %d is built in", config.ErrNetworkExists, netAddChainID)
		}
		if err := cfg.AddNetwork(entry); err != nil {
			return err
		}
		return saveAndReport(fmt.Sprintf("Network %s (chain %d) added", ui.ChainName(entry.Name), entry.ChainID))
	},
}

var networkRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a custom network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveNetwork(args[0]); err != nil {
			return err
		}
		return saveAndReport(fmt.Sprintf("Network %s removed", args[0]))
	},
}

func remoteChainID(ctx context.Context, url string) (int64, error) {
	b, err := chain.Dial(ctx, url)
	if err != nil {
		return 0, err
	}
	defer chain.Close(b)
	id, err := b.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", chain.ErrNetwork, err)
	}
	return id.Int64(), nil
}

func init() {
	f := networkAddCmd.Flags()
	f.StringVar(&netAddName, "name", "", "short network name")
	f.StringVar(&netAddRPC, "rpc", "", "RPC endpoint")
	f.Int64Var(&netAddChainID, "chain-id", 0, "chain id")
	f.StringVar(&netAddSymbol, "symbol", "ETH", "native currency symbol")
	f.StringVar(&netAddExplorer, "explorer", "", "block explorer URL")
	f.BoolVar(&netAddTestnet, "testnet", false, "mark as a testnet")
	networkCmd.AddCommand(networkListCmd, networkAddCmd, networkRemoveCmd)
}
