package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrNetwork marks failures talking to an RPC endpoint.
var ErrNetwork = errors.New("network failure")

// Caller is the read-only half of a backend; enough to query a contract.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ReceiptReader returns ethereum.NotFound while a transaction is pending.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Backend is the subset of *ethclient.Client the wallet and the transfer
// flow depend on. Tests swap in an in-memory chain.
type Backend interface {
	Caller
	ReceiptReader
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Dialer opens a Backend for an RPC URL.
type Dialer func(ctx context.Context, url string) (Backend, error)

var _ Backend = (*ethclient.Client)(nil)

// Dial connects to an RPC endpoint over HTTP(S) or WS.
func Dial(ctx context.Context, url string) (Backend, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty RPC URL", ErrNetwork)
	}
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %v", ErrNetwork, url, err)
	}
	return c, nil
}

// Close releases a backend if it holds a connection.
func Close(b Backend) {
	if c, ok := b.(interface{ Close() }); ok {
		c.Close()
	}
}
