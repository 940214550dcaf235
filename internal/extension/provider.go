package extension

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/provider"
	"github.com/Mohsinsiddi/w3dapp/internal/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Injected is the provider a page at one origin sees.
type Injected struct {
	ext    *Extension
	origin string
}

var _ provider.Provider = (*Injected)(nil)

// Provider injects the wallet into the page served from origin.
func (e *Extension) Provider(origin string) *Injected {
	return &Injected{ext: e, origin: origin}
}

// RequestAccounts returns the selected account at once for a permitted
// origin. Otherwise it queues a connect request and waits for a decision.
func (p *Injected) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	e := p.ext
	if e.isPermitted(p.origin) {
		return p.Accounts(ctx)
	}

	r := e.enqueue(&Request{Kind: KindConnect, Origin: p.origin, Network: e.Network().Name})
	e.log.Info().Uint64("id", r.ID).Str("origin", p.origin).Msg("Connect requested")

	ok, err := e.await(ctx, r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, provider.Rejected("User rejected the request.")
	}

	w, err := e.selectedWallet()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrNoAccounts, err)
	}
	e.mu.Lock()
	e.permitted[p.origin] = true
	e.mu.Unlock()
	return []common.Address{w.Addr()}, nil
}

// Accounts returns the selected account for a permitted origin and nothing
// otherwise.
func (p *Injected) Accounts(context.Context) ([]common.Address, error) {
	if !p.ext.isPermitted(p.origin) {
		return []common.Address{}, nil
	}
	w, err := p.ext.selectedWallet()
	if err != nil {
		return []common.Address{}, nil
	}
	return []common.Address{w.Addr()}, nil
}

func (p *Injected) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(p.ext.Network().ChainID), nil
}

func (p *Injected) CallContract(ctx context.Context, call ethereum.CallMsg, block *big.Int) ([]byte, error) {
	b, _, err := p.ext.backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.CallContract(ctx, call, block)
}

// SendTransaction fills nonce, gas and fees from the current network, then
// queues a signature request. On approval the transaction is signed with
// the selected account and broadcast.
func (p *Injected) SendTransaction(ctx context.Context, call ethereum.CallMsg) (common.Hash, error) {
	e := p.ext
	if !e.isPermitted(p.origin) {
		return common.Hash{}, &provider.RPCError{Code: provider.CodeUnauthorized, Message: "origin not connected"}
	}
	w, err := e.selectedWallet()
	if err != nil {
		return common.Hash{}, err
	}
	if call.From != (common.Address{}) && call.From != w.Addr() {
		return common.Hash{}, &provider.RPCError{
			Code:    provider.CodeUnauthorized,
			Message: fmt.Sprintf("account %s is not selected", call.From.Hex()),
		}
	}
	call.From = w.Addr()

	b, n, err := e.backend(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	tx, err := buildTx(ctx, b, n, call)
	if err != nil {
		return common.Hash{}, err
	}

	r := e.enqueue(&Request{Kind: KindTransaction, Origin: p.origin, Network: n.Name, From: w.Addr(), Tx: tx})
	e.log.Info().Uint64("id", r.ID).Str("origin", p.origin).Str("to", tx.To().Hex()).Msg("Signature requested")

	ok, err := e.await(ctx, r)
	if err != nil {
		return common.Hash{}, err
	}
	if !ok {
		e.log.Info().Uint64("id", r.ID).Msg("Transaction rejected")
		return common.Hash{}, provider.Rejected("user rejected transaction")
	}

	signed, err := wallet.NewSigner(w, e.wallets).SignTx(tx, big.NewInt(n.ChainID))
	if err != nil {
		return common.Hash{}, err
	}
	if err := b.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting: %w", err)
	}
	e.log.Info().Uint64("id", r.ID).Str("tx", signed.Hash().Hex()).Msg("Transaction sent")
	return signed.Hash(), nil
}

func (p *Injected) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	b, _, err := p.ext.backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.TransactionReceipt(ctx, hash)
}

// buildTx prepares an unsigned EIP-1559 transaction. The node's gas
// estimate and fee suggestions are used as they come.
func buildTx(ctx context.Context, b chain.Backend, n chain.Network, call ethereum.CallMsg) (*types.Transaction, error) {
	nonce, err := b.PendingNonceAt(ctx, call.From)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", chain.ErrNetwork, err)
	}
	tip, err := b.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: gas tip: %v", chain.ErrNetwork, err)
	}
	feeCap, err := b.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: gas price: %v", chain.ErrNetwork, err)
	}
	if feeCap.Cmp(tip) < 0 {
		feeCap = new(big.Int).Set(tip)
	}
	gas := call.Gas
	if gas == 0 {
		if gas, err = b.EstimateGas(ctx, call); err != nil {
			return nil, fmt.Errorf("estimating gas: %w", err)
		}
	}

	value := call.Value
	if value == nil {
		value = new(big.Int)
	}
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(n.ChainID),
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        call.To,
		Value:     value,
		Data:      call.Data,
	}), nil
}
