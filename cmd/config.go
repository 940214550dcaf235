package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetNetworkCmd = &cobra.Command{
	Use:   "set-network <name>",
	Short: "Set the network the wallet starts on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := newRegistry().GetByName(args[0]); err != nil {
			return fmt.Errorf("unknown network %q, run `w3dapp network list`", args[0])
		}
		cfg.DefaultNetwork = args[0]
		return saveAndReport(fmt.Sprintf("Default network set to %s", ui.ChainName(args[0])))
	},
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token <address> [decimals]",
	Short: "Set the ERC-20 contract the page transfers",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := contract.ParseAddress(args[0])
		if err != nil {
			return err
		}
		cfg.TokenAddress = addr.Hex()
		if len(args) == 2 {
			d, err := strconv.Atoi(args[1])
			if err != nil || d < 0 {
				return fmt.Errorf("invalid decimals %q", args[1])
			}
			cfg.Decimals = d
		}
		return saveAndReport(fmt.Sprintf("Token set to %s", ui.Addr(cfg.TokenAddress)))
	},
}

var configSetRPCCmd = &cobra.Command{
	Use:   "set-rpc <url>",
	Short: "Set the read-only RPC endpoint (empty string resets it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.RPCEndpoint = args[0]
		if args[0] == "" {
			return saveAndReport("RPC endpoint reset to the network default")
		}
		return saveAndReport(fmt.Sprintf("RPC endpoint set to %s", args[0]))
	},
}

var configSetListenCmd = &cobra.Command{
	Use:   "set-listen <host:port>",
	Short: "Set the address `w3dapp serve` listens on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.ListenAddr = args[0]
		return saveAndReport(fmt.Sprintf("Listen address set to %s", args[0]))
	},
}

var configSetABICmd = &cobra.Command{
	Use:   "set-abi <path>",
	Short: "Use an ABI file for the token contract (empty string resets it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.TokenABI = args[0]
		if args[0] == "" {
			return saveAndReport("Token ABI reset to the built-in ERC-20 subset")
		}
		d, err := contract.LoadDescriptor(cfg.TokenABIPath())
		if err != nil {
			return err
		}
		if err := d.Require(contract.SigName, contract.SigBalanceOf, contract.SigTransfer); err != nil {
			return err
		}
		return saveAndReport(fmt.Sprintf("Token ABI set to %s", cfg.TokenABIPath()))
	},
}

func saveAndReport(msg string) error {
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Println(ui.Success(msg))
	return nil
}

func init() {
	configCmd.AddCommand(configListCmd, configSetNetworkCmd, configSetTokenCmd, configSetRPCCmd, configSetListenCmd, configSetABICmd)
}
