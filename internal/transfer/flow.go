// Package transfer is the dApp's token flow: read the token name, read the
// signer's balance and submit transfer(recipient, amount) through an
// injected wallet.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/provider"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// ErrReverted is returned when the transfer was mined but failed.
var ErrReverted = chain.ErrReverted

// DefaultPollInterval is how often settlement polls for a receipt.
const DefaultPollInterval = 2 * time.Second

// Config says which token the flow talks to. Nothing in the flow is
// hardcoded; a zero Interface means contract.ERC20Minimal and zero
// Decimals means 18.
type Config struct {
	ContractAddress common.Address
	Interface       contract.Descriptor
	RPCEndpoint     string
	Decimals        int
}

// Flow runs the token operations. It keeps no state between calls; every
// call builds a fresh token handle.
type Flow struct {
	cfg          Config
	dial         chain.Dialer
	log          zerolog.Logger
	pollInterval time.Duration
}

// Option configures a Flow.
type Option func(*Flow)

// WithDialer replaces ethclient for the read-only connection.
func WithDialer(d chain.Dialer) Option {
	return func(f *Flow) {
		f.dial = d
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Flow) {
		f.log = l
	}
}

// WithPollInterval sets the receipt polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(f *Flow) {
		f.pollInterval = d
	}
}

// New validates cfg and returns a Flow.
func New(cfg Config, opts ...Option) (*Flow, error) {
	if cfg.ContractAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: contract address is zero", contract.ErrInvalidAddress)
	}
	if cfg.Interface == nil {
		cfg.Interface = contract.ERC20Minimal
	}
	if err := cfg.Interface.Require(contract.SigName, contract.SigBalanceOf, contract.SigTransfer); err != nil {
		return nil, err
	}
	if cfg.Decimals == 0 {
		cfg.Decimals = 18
	}
	if cfg.Decimals < 0 || cfg.Decimals > chain.MaxDecimals {
		return nil, fmt.Errorf("decimals out of range: %d", cfg.Decimals)
	}

	f := &Flow{
		cfg:          cfg,
		dial:         chain.Dial,
		log:          zerolog.Nop(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Config returns the flow's configuration.
func (f *Flow) Config() Config {
	return f.cfg
}

// FetchTokenName reads name() over a read-only connection to the
// configured RPC endpoint. Failures are returned as is; there is no retry.
func (f *Flow) FetchTokenName(ctx context.Context) (string, error) {
	backend, err := f.dial(ctx, f.cfg.RPCEndpoint)
	if err != nil {
		return "", err
	}
	defer chain.Close(backend)

	token, err := contract.NewToken(f.cfg.ContractAddress, f.cfg.Interface, backend)
	if err != nil {
		return "", err
	}
	name, err := token.Name(ctx)
	if err != nil {
		return "", fmt.Errorf("reading token name: %w", err)
	}
	f.log.Info().Str("name", name).Str("token", f.cfg.ContractAddress.Hex()).Msg("Token name")
	return name, nil
}

// FetchBalance reads balanceOf(signer) through the wallet and formats it
// with the configured decimals. Nothing is cached.
func (f *Flow) FetchBalance(ctx context.Context, p provider.Provider) (Balance, error) {
	account, err := provider.Signer(ctx, p)
	if err != nil {
		return Balance{}, fmt.Errorf("resolving signer: %w", err)
	}

	token, err := contract.NewToken(f.cfg.ContractAddress, f.cfg.Interface, p)
	if err != nil {
		return Balance{}, err
	}
	raw, err := token.BalanceOf(ctx, account)
	if err != nil {
		return Balance{}, fmt.Errorf("reading balance: %w", err)
	}

	b := Balance{Account: account, Raw: raw, Formatted: chain.FormatUnits(raw, f.cfg.Decimals)}
	f.log.Debug().Str("account", account.Hex()).Str("balance", b.Formatted).Msg("Balance")
	return b, nil
}

// SubmitTransfer sends transfer(recipient, amount) through the wallet,
// waits for the receipt and classifies the outcome. A malformed amount is
// the only case that returns an error instead of a Result; everything after
// parsing lands in Result.Outcome. Settlement waits as long as ctx allows.
func (f *Flow) SubmitTransfer(ctx context.Context, p provider.Provider, req Request) (Result, error) {
	amount, err := chain.ParseUnits(req.Amount, f.cfg.Decimals)
	if err != nil {
		return Result{}, fmt.Errorf("parsing amount: %w", err)
	}

	start := time.Now()
	res := Result{Request: req}
	log := f.log.With().Str("recipient", req.Recipient).Str("amount", req.Amount).Logger()

	settle := func(err error) (Result, error) {
		res.Elapsed = time.Since(start)
		res.Outcome = Classify(err)
		res.Status = res.Outcome.Status()
		res.Err = err
		ev := log.Info()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("outcome", res.Outcome.String()).Str("tx", res.TxHash.Hex()).Dur("elapsed", res.Elapsed).Msg("Transfer settled")
		return res, nil
	}

	from, err := provider.Signer(ctx, p)
	if err != nil {
		return settle(fmt.Errorf("resolving signer: %w", err))
	}
	to, err := contract.ParseAddress(req.Recipient)
	if err != nil {
		return settle(err)
	}
	token, err := contract.NewToken(f.cfg.ContractAddress, f.cfg.Interface, p)
	if err != nil {
		return settle(err)
	}

	hash, err := token.Transfer(ctx, p, from, to, amount)
	if err != nil {
		return settle(fmt.Errorf("sending transfer: %w", err))
	}
	res.TxHash = hash
	log.Info().Str("tx", hash.Hex()).Msg("Transfer submitted")

	receipt, err := chain.WaitMined(ctx, p, hash, f.pollInterval)
	res.Receipt = receipt
	return settle(err)
}

// Classify maps an error from the transfer path onto an outcome: nil is
// Confirmed, a user rejection anywhere in the chain is Rejected and
// anything else is Error.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeConfirmed
	case errors.Is(err, provider.ErrUserRejected):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}
