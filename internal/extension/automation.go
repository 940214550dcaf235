package extension

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// TokenData is what the wallet shows after importing a token.
type TokenData struct {
	ContractAddress string
	Symbol          string
	Decimals        string
	Imported        bool
}

// AcceptAccess approves the next connect request, waiting for one if none
// is pending.
func (e *Extension) AcceptAccess(ctx context.Context) bool {
	return e.decideNext(ctx, KindConnect, true)
}

// RejectAccess declines the next connect request.
func (e *Extension) RejectAccess(ctx context.Context) bool {
	return e.decideNext(ctx, KindConnect, false)
}

// ConfirmTransferTransaction approves the next signature request.
func (e *Extension) ConfirmTransferTransaction(ctx context.Context) bool {
	return e.decideNext(ctx, KindTransaction, true)
}

// RejectTransaction declines the next signature request.
func (e *Extension) RejectTransaction(ctx context.Context) bool {
	return e.decideNext(ctx, KindTransaction, false)
}

func (e *Extension) decideNext(ctx context.Context, kind Kind, approve bool) bool {
	for {
		r, ok := e.waitFor(ctx, kind)
		if !ok {
			return false
		}
		// Someone else may have decided it between waitFor and here.
		if err := e.decide(r.ID, approve); err == nil {
			e.log.Debug().Uint64("id", r.ID).Stringer("kind", kind).Bool("approved", approve).Msg("Request decided")
			return true
		}
	}
}

// DisconnectWalletFromAllDapps revokes every origin's access.
func (e *Extension) DisconnectWalletFromAllDapps() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.permitted = make(map[string]bool)
	e.log.Info().Msg("Disconnected from all dApps")
	return true
}

// ImportAccount adds a private key and selects its account. Importing a key
// that is already present just selects it.
func (e *Extension) ImportAccount(hexKey string) (common.Address, error) {
	w, err := e.wallets.AddWithKey(e.nextAccountName(), hexKey)
	if err != nil {
		return common.Address{}, err
	}

	for _, existing := range e.wallets.List() {
		if existing.Name != w.Name && existing.Addr() == w.Addr() {
			_ = e.wallets.Remove(w.Name)
			w = existing
			break
		}
	}

	e.mu.Lock()
	e.selected = w
	e.mu.Unlock()
	e.log.Info().Str("account", w.Address).Msg("Account imported")
	return w.Addr(), nil
}

// nextAccountName returns the lowest free "Account N". Removed accounts
// leave gaps, so the count of accounts is not enough.
func (e *Extension) nextAccountName() string {
	for i := len(e.wallets.List()) + 1; ; i++ {
		name := fmt.Sprintf("Account %d", i)
		if _, err := e.wallets.Get(name); errors.Is(err, wallet.ErrWalletNotFound) {
			return name
		}
	}
}

// AddNetwork registers n if its chain id is new and switches to it. The RPC
// endpoint must answer with the declared chain id.
func (e *Extension) AddNetwork(ctx context.Context, n chain.Network) bool {
	b, err := e.dial(ctx, n.RPC())
	if err != nil {
		e.log.Warn().Err(err).Str("network", n.Name).Msg("Add network failed")
		return false
	}
	id, err := b.ChainID(ctx)
	if err != nil || id.Int64() != n.ChainID {
		chain.Close(b)
		e.log.Warn().Err(err).Str("network", n.Name).Msg("RPC chain id does not match")
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, err := e.registry.GetByChainID(n.ChainID); err == nil {
		n = *existing
	} else if err := e.registry.Register(n); err != nil {
		chain.Close(b)
		e.log.Warn().Err(err).Str("network", n.Name).Msg("Add network failed")
		return false
	} else {
		stored, _ := e.registry.GetByChainID(n.ChainID)
		n = *stored
	}

	if old, ok := e.backends[n.Name]; ok {
		chain.Close(old)
	}
	e.backends[n.Name] = b
	e.network = n
	e.log.Info().Str("network", n.Name).Int64("chainId", n.ChainID).Msg("Network added")
	return true
}

// ImportToken reads symbol and decimals of the token at address on the
// current network and adds it to the wallet's token list.
func (e *Extension) ImportToken(ctx context.Context, address string) (TokenData, error) {
	addr, err := contract.ParseAddress(address)
	if err != nil {
		return TokenData{}, err
	}
	b, n, err := e.backend(ctx)
	if err != nil {
		return TokenData{}, err
	}
	tok, err := contract.NewToken(addr, contract.ERC20Metadata, b)
	if err != nil {
		return TokenData{}, err
	}
	symbol, err := tok.Symbol(ctx)
	if err != nil {
		return TokenData{}, fmt.Errorf("reading symbol: %w", err)
	}
	decimals, err := tok.Decimals(ctx)
	if err != nil {
		return TokenData{}, fmt.Errorf("reading decimals: %w", err)
	}

	td := TokenData{
		ContractAddress: addr.Hex(),
		Symbol:          symbol,
		Decimals:        strconv.Itoa(int(decimals)),
		Imported:        true,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, existing := range e.tokens[n.ChainID] {
		if existing.ContractAddress == td.ContractAddress {
			return existing, nil
		}
	}
	e.tokens[n.ChainID] = append(e.tokens[n.ChainID], td)
	e.log.Info().Str("token", td.ContractAddress).Str("symbol", symbol).Msg("Token imported")
	return td, nil
}

// Tokens lists tokens imported on the current network.
func (e *Extension) Tokens() []TokenData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]TokenData(nil), e.tokens[e.network.ChainID]...)
}
