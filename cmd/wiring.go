package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/extension"
	"github.com/Mohsinsiddi/w3dapp/internal/transfer"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/Mohsinsiddi/w3dapp/internal/wallet"
)

// cliOrigin is the origin the terminal commands connect to the wallet as.
const cliOrigin = "w3dapp-cli"

// dial opens RPC connections for the wallet. Tests swap it for fake chains.
var dial chain.Dialer = chain.Dial

// activeNetwork is the --network flag, or the configured default.
func activeNetwork() string {
	if networkFlag != "" {
		return networkFlag
	}
	return cfg.DefaultNetwork
}

// newRegistry returns the built-in networks plus the user's custom ones.
func newRegistry() *chain.Registry {
	reg := chain.NewRegistry()
	for _, e := range cfg.CustomNetworks {
		n := chain.Network{
			Name:          e.Name,
			DisplayName:   e.DisplayName,
			ChainID:       e.ChainID,
			Symbol:        e.Symbol,
			RPCURLs:       []string{e.RPCURL},
			BlockExplorer: e.BlockExplorer,
			IsTestnet:     e.IsTestnet,
		}
		if err := reg.Register(n); err != nil {
			log.Warn().Err(err).Str("network", e.Name).Msg("Skipping custom network")
		}
	}
	return reg
}

// newWalletManager creates a Manager backed by the config-dir JSON store
// and the OS keychain.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(cfg.Dir(), cfg.KeyringPassword())),
	)
}

// newExtension opens the wallet on the configured network and switches it
// to --network when given. A key passed through W3DAPP_PRIVATE_KEY replaces
// the stored accounts and is kept in memory only.
func newExtension(walletName string) (*extension.Extension, error) {
	var mgr *wallet.Manager
	if cfg.PrivateKey() != "" {
		mgr = wallet.NewManager()
	} else {
		mgr = newWalletManager()
	}

	ext, err := extension.New(cfg.DefaultNetwork,
		extension.WithWallets(mgr),
		extension.WithRegistry(newRegistry()),
		extension.WithLogger(log),
		extension.WithDialer(dial),
	)
	if err != nil {
		return nil, err
	}
	if networkFlag != "" {
		if err := ext.SwitchNetwork(networkFlag); err != nil {
			ext.Close()
			return nil, fmt.Errorf("unknown network %q, run `w3dapp network list`", networkFlag)
		}
	}

	if key := cfg.PrivateKey(); key != "" {
		if _, err := ext.ImportAccount(key); err != nil {
			ext.Close()
			return nil, fmt.Errorf("%s: %w", config.EnvPrivateKey, err)
		}
	}

	if walletName != "" {
		w, err := mgr.Get(walletName)
		if err != nil {
			ext.Close()
			return nil, fmt.Errorf("wallet %q not found, run `w3dapp wallet list`", walletName)
		}
		if err := ext.SelectAccount(w.Addr()); err != nil {
			ext.Close()
			return nil, err
		}
	}
	return ext, nil
}

// newFlow builds the transfer flow for the configured token. The read-only
// endpoint is the configured RPC, or the active network's first RPC.
func newFlow() (*transfer.Flow, *chain.Network, error) {
	n, err := newRegistry().GetByName(activeNetwork())
	if err != nil {
		return nil, nil, fmt.Errorf("unknown network %q, run `w3dapp network list`", activeNetwork())
	}
	addr, err := contract.ParseAddress(cfg.TokenAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("token address: %w", err)
	}

	endpoint := cfg.RPCEndpoint
	if endpoint == "" {
		endpoint = n.RPC()
	}

	var iface contract.Descriptor
	if path := cfg.TokenABIPath(); path != "" {
		if iface, err = contract.LoadDescriptor(path); err != nil {
			return nil, nil, fmt.Errorf("token ABI: %w", err)
		}
	}

	flow, err := transfer.New(transfer.Config{
		ContractAddress: addr,
		RPCEndpoint:     endpoint,
		Decimals:        cfg.Decimals,
		Interface:       iface,
	},
		transfer.WithLogger(log),
		transfer.WithPollInterval(config.ReceiptPollInterval),
	)
	if err != nil {
		return nil, nil, err
	}
	return flow, n, nil
}

// answerRequests plays the wallet popup for terminal commands. Connect
// requests from the CLI itself are approved. Signature requests are shown
// and confirmed on stdin unless assumeYes is set. It returns when ctx ends.
func answerRequests(ctx context.Context, ext *extension.Extension, assumeYes bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-ext.Requests():
			approve := true
			if r.Kind == extension.KindTransaction && !assumeYes {
				fmt.Println(ui.RequestBlock(r))
				approve = ui.Confirm("Sign and send this transaction?")
			}
			decide := ext.Reject
			if approve {
				decide = ext.Approve
			}
			if err := decide(r.ID); err != nil {
				log.Debug().Err(err).Uint64("id", r.ID).Msg("Request already gone")
			}
		}
	}
}
