package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoContract is returned when a call comes back empty, which is what
	// an address without code answers.
	ErrNoContract = errors.New("no contract code at address")
	// ErrInvalidAddress is returned for strings that are not 20-byte hex.
	ErrInvalidAddress = errors.New("invalid address")
)

// Transactor submits a state-changing call and returns the pending tx hash.
// A wallet provider fills in nonce, gas and signature.
type Transactor interface {
	SendTransaction(ctx context.Context, call ethereum.CallMsg) (common.Hash, error)
}

// Token is a handle on one ERC-20 contract: an address and an interface
// descriptor bound to whatever can answer eth_call. Handles are cheap and
// meant to be built per call.
type Token struct {
	address common.Address
	abi     abi.ABI
	caller  chain.Caller
}

// NewToken binds a descriptor at address to caller.
func NewToken(address common.Address, d Descriptor, caller chain.Caller) (*Token, error) {
	parsed, err := d.ABI()
	if err != nil {
		return nil, err
	}
	return &Token{address: address, abi: parsed, caller: caller}, nil
}

// ParseAddress validates a hex address string.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// Address returns the contract address.
func (t *Token) Address() common.Address {
	return t.address
}

// Name calls name().
func (t *Token) Name(ctx context.Context) (string, error) {
	var name string
	if err := t.call(ctx, &name, "name"); err != nil {
		return "", err
	}
	return name, nil
}

// Symbol calls symbol().
func (t *Token) Symbol(ctx context.Context) (string, error) {
	var symbol string
	if err := t.call(ctx, &symbol, "symbol"); err != nil {
		return "", err
	}
	return symbol, nil
}

// Decimals calls decimals().
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	var decimals uint8
	if err := t.call(ctx, &decimals, "decimals"); err != nil {
		return 0, err
	}
	return decimals, nil
}

// BalanceOf calls balanceOf(owner) and returns the raw base-unit amount.
func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var balance *big.Int
	if err := t.call(ctx, &balance, "balanceOf", owner); err != nil {
		return nil, err
	}
	return balance, nil
}

// Transfer submits transfer(to, amount) from the given account through tr.
func (t *Token) Transfer(ctx context.Context, tr Transactor, from, to common.Address, amount *big.Int) (common.Hash, error) {
	data, err := t.abi.Pack("transfer", to, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding transfer: %w", err)
	}
	return tr.SendTransaction(ctx, ethereum.CallMsg{
		From: from,
		To:   &t.address,
		Data: data,
	})
}

func (t *Token) call(ctx context.Context, out interface{}, method string, args ...interface{}) error {
	data, err := t.abi.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", method, err)
	}

	raw, err := t.caller.CallContract(ctx, ethereum.CallMsg{To: &t.address, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("%w: calling %s on %s: %v", chain.ErrNetwork, method, t.address.Hex(), err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: %s", ErrNoContract, t.address.Hex())
	}

	if err := t.abi.UnpackIntoInterface(out, method, raw); err != nil {
		return fmt.Errorf("decoding %s: %w", method, err)
	}
	return nil
}
