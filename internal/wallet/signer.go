package wallet

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Signer signs EVM transactions for a signing wallet.
type Signer struct {
	wallet *Wallet
	mgr    *Manager
}

// NewSigner creates a signer for the given wallet. Keys are fetched from
// the manager's keystore on every call and never held.
func NewSigner(w *Wallet, mgr *Manager) *Signer {
	return &Signer{wallet: w, mgr: mgr}
}

// SignTx signs tx for chainID with the London signer, which covers both
// legacy and EIP-1559 transactions.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	key, err := s.mgr.PrivateKey(s.wallet)
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

// Address returns the wallet's address.
func (s *Signer) Address() common.Address {
	return s.wallet.Addr()
}
