package mocks

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3dapp/internal/provider"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// MockProvider is a wallet that approves or rejects without a prompt. It
// signs with Key against Chain.
type MockProvider struct {
	Chain *FakeChain
	Key   *ecdsa.PrivateKey

	// Reject answers every signature request with a 4001 error.
	Reject bool
	// AccountsErr fails Accounts and RequestAccounts.
	AccountsErr error
	// NoAccounts exposes an empty account list.
	NoAccounts bool

	mu       sync.Mutex
	Requests int
}

var _ provider.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider for key on c.
func NewMockProvider(c *FakeChain, key *ecdsa.PrivateKey) *MockProvider {
	return &MockProvider{Chain: c, Key: key}
}

// Address is the account the provider signs for.
func (p *MockProvider) Address() common.Address {
	return crypto.PubkeyToAddress(p.Key.PublicKey)
}

func (p *MockProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return p.Accounts(ctx)
}

func (p *MockProvider) Accounts(context.Context) ([]common.Address, error) {
	if p.AccountsErr != nil {
		return nil, p.AccountsErr
	}
	if p.NoAccounts {
		return nil, nil
	}
	return []common.Address{p.Address()}, nil
}

func (p *MockProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.Chain.ChainID(ctx)
}

func (p *MockProvider) CallContract(ctx context.Context, call ethereum.CallMsg, block *big.Int) ([]byte, error) {
	return p.Chain.CallContract(ctx, call, block)
}

func (p *MockProvider) SendTransaction(ctx context.Context, call ethereum.CallMsg) (common.Hash, error) {
	p.mu.Lock()
	p.Requests++
	p.mu.Unlock()

	if p.Reject {
		return common.Hash{}, provider.Rejected("user rejected transaction")
	}

	chainID, err := p.Chain.ChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	nonce, err := p.Chain.PendingNonceAt(ctx, p.Address())
	if err != nil {
		return common.Hash{}, err
	}
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: big.NewInt(1_000_000_000),
		GasFeeCap: big.NewInt(2_000_000_000),
		Gas:       60_000,
		To:        call.To,
		Value:     call.Value,
		Data:      call.Data,
	})
	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), p.Key)
	if err != nil {
		return common.Hash{}, err
	}
	if err := p.Chain.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}
	return signed.Hash(), nil
}

func (p *MockProvider) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return p.Chain.TransactionReceipt(ctx, hash)
}
