// Package provider defines the boundary between the dApp and an injected
// wallet, modelled on EIP-1193.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
)

var (
	// ErrUserRejected means the user declined a request in the wallet.
	ErrUserRejected = errors.New("user rejected the request")
	// ErrUnauthorized means the origin has not been granted account access.
	ErrUnauthorized = errors.New("account access not authorized")
	// ErrNoAccounts is returned when the wallet exposes no account.
	ErrNoAccounts = errors.New("no accounts available")
)

// Provider is what a wallet injects into the page.
type Provider interface {
	// RequestAccounts asks for account access and blocks until the user decides.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Accounts returns the already-permitted accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	// SendTransaction asks the wallet to sign and broadcast call. It returns
	// the hash of the pending transaction.
	SendTransaction(ctx context.Context, call ethereum.CallMsg) (common.Hash, error)
	// TransactionReceipt returns ethereum.NotFound while the tx is pending.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// RPCError is a provider error carrying an EIP-1193 code.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ErrorCode implements go-ethereum's rpc.Error.
func (e *RPCError) ErrorCode() int {
	return e.Code
}

// Is maps codes onto the package sentinels so callers can use errors.Is.
func (e *RPCError) Is(target error) bool {
	switch target {
	case ErrUserRejected:
		return e.Code == CodeUserRejected
	case ErrUnauthorized:
		return e.Code == CodeUnauthorized
	}
	return false
}

// Rejected builds a 4001 error.
func Rejected(msg string) *RPCError {
	return &RPCError{Code: CodeUserRejected, Message: msg}
}

// Signer returns the first account, which is the one the wallet has selected.
func Signer(ctx context.Context, p Provider) (common.Address, error) {
	accounts, err := p.Accounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, ErrNoAccounts
	}
	return accounts[0], nil
}
