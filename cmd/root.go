package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3dapp/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	log         = zerolog.Nop()
	verbose     bool
	networkFlag string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3dapp",
	Short: "ERC-20 transfer dApp with a built-in wallet",
	Long: `w3dapp reads an ERC-20 token, checks balances and submits transfers
through a local wallet that asks before it connects or signs.

  w3dapp serve     runs the transfer page and the wallet approval prompt
  w3dapp transfer  sends tokens from the terminal

Settings live in ~/.w3dapp/config.json. A .env file and W3DAPP_* variables
override them.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = newLogger(verbose)
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func init() {
	// W3DAPP_CONFIG_DIR is the default for --config.
	if envDir := os.Getenv(config.EnvConfigDir); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3dapp)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&networkFlag, "network", "", "network for this run (default: config default_network)")

	rootCmd.AddCommand(
		configCmd,
		networkCmd,
		walletCmd,
		tokenCmd,
		balanceCmd,
		transferCmd,
		historyCmd,
		serveCmd,
	)
}
