// Package dapp is the token transfer page: a small HTTP app exposing the
// same elements and actions as the browser dApp, driven by an injected
// wallet provider.
package dapp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/history"
	"github.com/Mohsinsiddi/w3dapp/internal/provider"
	"github.com/Mohsinsiddi/w3dapp/internal/transfer"
	"github.com/rs/zerolog"
)

// Element ids on the page.
const (
	IDConnectButton     = "connectButton"
	IDNetwork           = "network"
	IDChainID           = "chainId"
	IDAccounts          = "accounts"
	IDDisconnect        = "disconnect"
	IDRecipientInput    = "recipientInput"
	IDAmountInput       = "amountInput"
	IDTransferButton    = "transferButton"
	IDBalance           = "balance"
	IDGetBalance        = "getBalance"
	IDTransactionStatus = "transactionStatus"
)

// ErrUnknownElement is returned for clicks or fills on an id the page does
// not have, or that does not accept the action.
var ErrUnknownElement = errors.New("unknown element")

// State is everything the page shows.
type State struct {
	TokenName      string `json:"tokenName"`
	Network        string `json:"network"`
	ChainID        string `json:"chainId"`
	Accounts       string `json:"accounts"`
	Balance        string `json:"balance"`
	Recipient      string `json:"recipient"`
	Amount         string `json:"amount"`
	TransferStatus string `json:"transferStatus"`
	Busy           bool   `json:"busy"`
}

// App holds the page state and runs its actions. Each action overwrites
// the fields it owns; nothing is merged.
type App struct {
	flow     *transfer.Flow
	session  *transfer.Session
	registry *chain.Registry
	history  *history.Store
	metrics  *Metrics
	log      zerolog.Logger
	timeout  time.Duration

	mu       sync.Mutex
	state    State
	inflight int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.log = l
	}
}

// WithHistory records every transfer outcome in s.
func WithHistory(s *history.Store) Option {
	return func(a *App) {
		a.history = s
	}
}

// WithMetrics replaces the default metrics.
func WithMetrics(m *Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithActionTimeout bounds each click-started action. Zero means actions
// run until the app closes.
func WithActionTimeout(d time.Duration) Option {
	return func(a *App) {
		a.timeout = d
	}
}

// WithRegistry sets the network names used for #network.
func WithRegistry(r *chain.Registry) Option {
	return func(a *App) {
		a.registry = r
	}
}

// New builds the page around a flow and the wallet's injected provider.
func New(flow *transfer.Flow, p provider.Provider, opts ...Option) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		flow:     flow,
		session:  transfer.NewSession(p),
		registry: chain.NewRegistry(),
		metrics:  NewMetrics(),
		log:      zerolog.Nop(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start runs the page's init step: reading the token name.
func (a *App) Start() {
	a.spawn("getTokenName", func(ctx context.Context) {
		_ = a.GetTokenName(ctx)
	})
}

// Close cancels running actions and waits for them.
func (a *App) Close() {
	a.cancel()
	a.wg.Wait()
}

// Wait blocks until no action is running.
func (a *App) Wait() {
	a.wg.Wait()
}

// Metrics returns the app's metrics.
func (a *App) Metrics() *Metrics {
	return a.metrics
}

// State returns a snapshot of the page.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state
	s.Busy = a.inflight > 0
	return s
}

// Click starts the action behind a button without waiting for it, the way
// a browser click returns before the handler's promise settles.
func (a *App) Click(id string) error {
	switch id {
	case IDConnectButton:
		a.spawn(id, func(ctx context.Context) { _ = a.OpenConnect(ctx) })
	case IDDisconnect:
		a.DisconnectWallet()
	case IDGetBalance:
		a.spawn(id, func(ctx context.Context) { _ = a.GetBalance(ctx) })
	case IDTransferButton:
		// The status clears on click, before the wallet is even asked.
		a.mu.Lock()
		a.state.TransferStatus = ""
		a.mu.Unlock()
		a.spawn(id, func(ctx context.Context) { _, _ = a.Transfer(ctx) })
	default:
		return ErrUnknownElement
	}
	return nil
}

// Fill sets an input's value.
func (a *App) Fill(id, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch id {
	case IDRecipientInput:
		a.state.Recipient = value
	case IDAmountInput:
		a.state.Amount = value
	default:
		return ErrUnknownElement
	}
	return nil
}

// GetTokenName reads the token name over the read-only RPC. A failure is
// only logged.
func (a *App) GetTokenName(ctx context.Context) error {
	name, err := a.flow.FetchTokenName(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("Reading token name failed")
		return err
	}
	a.mu.Lock()
	a.state.TokenName = name
	a.mu.Unlock()
	return nil
}

// OpenConnect asks the wallet for access and shows the network, chain id
// and account it grants.
func (a *App) OpenConnect(ctx context.Context) error {
	account, err := a.session.Connect(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("Wallet connection failed")
		return err
	}
	id, err := a.session.Provider().ChainID(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("Reading chain id failed")
		return err
	}

	a.mu.Lock()
	a.state.Accounts = strings.ToLower(account.Hex())
	a.state.ChainID = id.String()
	a.state.Network = a.registry.NameOf(id.Int64())
	a.mu.Unlock()
	a.log.Info().Str("account", account.Hex()).Str("chainId", id.String()).Msg("Wallet connected")
	return nil
}

// DisconnectWallet forgets the session. The wallet's own permission for
// this origin is untouched.
func (a *App) DisconnectWallet() {
	a.session.Disconnect()
	a.mu.Lock()
	a.state.Accounts = ""
	a.state.Network = ""
	a.state.ChainID = ""
	a.mu.Unlock()
	a.log.Info().Msg("Wallet disconnected")
}

// GetBalance refreshes #balance. On failure the old value stays.
func (a *App) GetBalance(ctx context.Context) error {
	b, err := a.flow.FetchBalance(ctx, a.session.Provider())
	if err != nil {
		a.log.Warn().Err(err).Msg("Reading balance failed")
		return err
	}
	a.mu.Lock()
	a.state.Balance = b.Formatted
	a.mu.Unlock()
	return nil
}

// Transfer submits the current recipient and amount and sets
// #transactionStatus from the outcome. A malformed amount leaves the status
// empty and returns the parse error.
func (a *App) Transfer(ctx context.Context) (transfer.Result, error) {
	a.mu.Lock()
	a.state.TransferStatus = ""
	req := transfer.Request{Recipient: a.state.Recipient, Amount: a.state.Amount}
	network := a.state.Network
	a.mu.Unlock()

	res, err := a.flow.SubmitTransfer(ctx, a.session.Provider(), req)
	if err != nil {
		a.log.Warn().Err(err).Msg("Transfer not submitted")
		return res, err
	}

	a.mu.Lock()
	a.state.TransferStatus = res.Status
	a.mu.Unlock()

	a.metrics.Observe(res)
	if a.history != nil {
		if herr := a.history.Put(context.WithoutCancel(ctx), history.FromResult(res, network)); herr != nil {
			a.log.Error().Err(herr).Msg("Recording transfer failed")
		}
	}
	return res, nil
}

func (a *App) spawn(name string, fn func(ctx context.Context)) {
	a.mu.Lock()
	a.inflight++
	a.mu.Unlock()
	a.wg.Add(1)

	go func() {
		defer a.wg.Done()
		defer func() {
			a.mu.Lock()
			a.inflight--
			a.mu.Unlock()
		}()

		ctx := a.ctx
		if a.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.timeout)
			defer cancel()
		}
		start := time.Now()
		fn(ctx)
		a.log.Debug().Str("action", name).Dur("took", time.Since(start)).Msg("Action finished")
	}()
}

