// Package extension is an in-process browser wallet. It owns accounts and
// networks, queues connection and signature requests from pages, and
// injects a provider.Provider into each origin. The automation methods
// mirror what an E2E harness does to a real wallet popup.
package extension

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

var (
	// ErrNoAccount is returned when an operation needs a selected account.
	ErrNoAccount = errors.New("wallet has no account")
	// ErrRequestNotFound is returned when deciding an unknown request id.
	ErrRequestNotFound = errors.New("request not found")
)

// Extension holds the wallet state. All methods are safe for concurrent use.
type Extension struct {
	mu        sync.Mutex
	wallets   *wallet.Manager
	registry  *chain.Registry
	dial      chain.Dialer
	log       zerolog.Logger
	network   chain.Network
	backends  map[string]chain.Backend
	selected  *wallet.Wallet
	permitted map[string]bool
	tokens    map[int64][]TokenData

	*queue
}

// Option configures an Extension.
type Option func(*Extension)

// WithDialer replaces ethclient for network connections.
func WithDialer(d chain.Dialer) Option {
	return func(e *Extension) {
		e.dial = d
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extension) {
		e.log = l
	}
}

// WithWallets uses an existing wallet manager, e.g. one backed by the OS
// keychain. The default keeps keys in memory.
func WithWallets(m *wallet.Manager) Option {
	return func(e *Extension) {
		e.wallets = m
	}
}

// WithRegistry replaces the built-in network list.
func WithRegistry(r *chain.Registry) Option {
	return func(e *Extension) {
		e.registry = r
	}
}

// New creates a wallet switched to the named network.
func New(network string, opts ...Option) (*Extension, error) {
	e := &Extension{
		wallets:   wallet.NewManager(),
		registry:  chain.NewRegistry(),
		dial:      chain.Dial,
		log:       zerolog.Nop(),
		backends:  make(map[string]chain.Backend),
		permitted: make(map[string]bool),
		tokens:    make(map[int64][]TokenData),
		queue:     newQueue(),
	}
	for _, opt := range opts {
		opt(e)
	}

	n, err := e.registry.GetByName(network)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, network)
	}
	e.network = *n

	if w := e.wallets.Default(); w != nil {
		e.selected = w
	} else if all := e.wallets.List(); len(all) > 0 {
		e.selected = all[0]
	}
	return e, nil
}

// Close drops every network connection.
func (e *Extension) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, b := range e.backends {
		chain.Close(b)
		delete(e.backends, name)
	}
}

// Network returns the current network.
func (e *Extension) Network() chain.Network {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.network
}

// Networks lists every network the wallet knows.
func (e *Extension) Networks() []chain.Network {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.All()
}

// SwitchNetwork changes the current network by short name.
func (e *Extension) SwitchNetwork(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, err := e.registry.GetByName(name)
	if err != nil {
		return fmt.Errorf("%w: %s", err, name)
	}
	e.network = *n
	e.log.Info().Str("network", n.Name).Int64("chainId", n.ChainID).Msg("Switched network")
	return nil
}

// SelectedAccount returns the account pages see.
func (e *Extension) SelectedAccount() (common.Address, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return common.Address{}, false
	}
	return e.selected.Addr(), true
}

// SelectAccount makes addr the account exposed to pages.
func (e *Extension) SelectAccount(addr common.Address) error {
	w, err := e.wallets.FindByAddress(addr)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.selected = w
	e.mu.Unlock()
	return nil
}

// Accounts lists every account in the wallet.
func (e *Extension) Accounts() []*wallet.Wallet {
	return e.wallets.List()
}

// backend returns a connection to the current network, dialling once per
// network.
func (e *Extension) backend(ctx context.Context) (chain.Backend, chain.Network, error) {
	e.mu.Lock()
	n := e.network
	b, ok := e.backends[n.Name]
	e.mu.Unlock()
	if ok {
		return b, n, nil
	}

	b, err := e.dial(ctx, n.RPC())
	if err != nil {
		return nil, n, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.backends[n.Name]; ok {
		chain.Close(b)
		return existing, n, nil
	}
	e.backends[n.Name] = b
	return b, n, nil
}

func (e *Extension) isPermitted(origin string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.permitted[origin]
}

func (e *Extension) selectedWallet() (*wallet.Wallet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return nil, ErrNoAccount
	}
	return e.selected, nil
}
