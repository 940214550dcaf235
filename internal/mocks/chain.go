package mocks

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var erc20ABI abi.ABI

func init() {
	parsed, err := contract.ERC20Full.ABI()
	if err != nil {
		panic(err)
	}
	erc20ABI = parsed
}

// MockToken is an ERC-20 living inside a FakeChain.
type MockToken struct {
	Name     string
	Symbol   string
	Decimals uint8
	Balances map[common.Address]*big.Int
}

// FakeChain is an in-memory EVM node that only knows ERC-20 tokens. It
// implements chain.Backend. Every accepted transaction is mined at once;
// ReceiptDelay holds receipts back for that many polls.
type FakeChain struct {
	mu       sync.Mutex
	chainID  *big.Int
	block    uint64
	tokens   map[common.Address]*MockToken
	nonces   map[common.Address]uint64
	receipts map[common.Hash]*types.Receipt
	polls    map[common.Hash]int
	sent     []*types.Transaction

	ReceiptDelay int
	// Err, when set, fails every call as an unreachable node would.
	Err error
	// SendErr fails only SendTransaction.
	SendErr error
}

var _ chain.Backend = (*FakeChain)(nil)

// NewFakeChain creates an empty chain with the given id.
func NewFakeChain(chainID int64) *FakeChain {
	return &FakeChain{
		chainID:  big.NewInt(chainID),
		block:    1,
		tokens:   make(map[common.Address]*MockToken),
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*types.Receipt),
		polls:    make(map[common.Hash]int),
	}
}

// DeployToken places a token at addr.
func (c *FakeChain) DeployToken(addr common.Address, name, symbol string, decimals uint8) *MockToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	tok := &MockToken{Name: name, Symbol: symbol, Decimals: decimals, Balances: make(map[common.Address]*big.Int)}
	c.tokens[addr] = tok
	return tok
}

// Mint credits amount of token to owner.
func (c *FakeChain) Mint(token, owner common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tok, ok := c.tokens[token]
	if !ok {
		panic(fmt.Sprintf("mocks: no token at %s", token.Hex()))
	}
	tok.Balances[owner] = new(big.Int).Add(balance(tok, owner), amount)
}

// BalanceOf reads a balance directly, bypassing the ABI.
func (c *FakeChain) BalanceOf(token, owner common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	tok, ok := c.tokens[token]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(balance(tok, owner))
}

// Sent returns every transaction accepted so far.
func (c *FakeChain) Sent() []*types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.Transaction(nil), c.sent...)
}

func (c *FakeChain) ChainID(context.Context) (*big.Int, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return new(big.Int).Set(c.chainID), nil
}

func (c *FakeChain) BlockNumber(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return c.block, nil
}

func (c *FakeChain) PendingNonceAt(_ context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return c.nonces[account], nil
}

func (c *FakeChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return big.NewInt(2_000_000_000), nil
}

func (c *FakeChain) SuggestGasTipCap(context.Context) (*big.Int, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return big.NewInt(1_000_000_000), nil
}

func (c *FakeChain) EstimateGas(_ context.Context, call ethereum.CallMsg) (uint64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	if call.To != nil && len(call.Data) >= 4 {
		return 51_000, nil
	}
	return 21_000, nil
}

// CallContract answers name, symbol, decimals and balanceOf. An address
// without a token returns empty output, as a node does for an account
// without code.
func (c *FakeChain) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	if call.To == nil {
		return nil, fmt.Errorf("call without target")
	}
	tok, ok := c.tokens[*call.To]
	if !ok {
		return nil, nil
	}
	if len(call.Data) < 4 {
		return nil, fmt.Errorf("execution reverted")
	}
	method, err := erc20ABI.MethodById(call.Data[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %v", err)
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %v", err)
	}

	switch method.Name {
	case "name":
		return method.Outputs.Pack(tok.Name)
	case "symbol":
		return method.Outputs.Pack(tok.Symbol)
	case "decimals":
		return method.Outputs.Pack(tok.Decimals)
	case "balanceOf":
		return method.Outputs.Pack(balance(tok, args[0].(common.Address)))
	case "transfer":
		return method.Outputs.Pack(true)
	}
	return nil, fmt.Errorf("execution reverted")
}

// SendTransaction validates the signature and nonce, applies an ERC-20
// transfer and records a receipt. Insufficient balance mines a failed
// receipt rather than refusing the transaction.
func (c *FakeChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	if c.SendErr != nil {
		return c.SendErr
	}
	if tx.ChainId().Cmp(c.chainID) != 0 {
		return fmt.Errorf("invalid chain id: have %s want %s", tx.ChainId(), c.chainID)
	}
	from, err := types.Sender(types.NewLondonSigner(c.chainID), tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if tx.Nonce() != c.nonces[from] {
		return fmt.Errorf("nonce mismatch: have %d want %d", tx.Nonce(), c.nonces[from])
	}
	c.nonces[from]++
	c.block++

	status := types.ReceiptStatusSuccessful
	if !c.apply(from, tx) {
		status = types.ReceiptStatusFailed
	}
	c.receipts[tx.Hash()] = &types.Receipt{
		Type:              tx.Type(),
		Status:            status,
		TxHash:            tx.Hash(),
		GasUsed:           tx.Gas(),
		CumulativeGasUsed: tx.Gas(),
		BlockNumber:       new(big.Int).SetUint64(c.block),
		Logs:              []*types.Log{},
	}
	c.polls[tx.Hash()] = c.ReceiptDelay
	c.sent = append(c.sent, tx)
	return nil
}

func (c *FakeChain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	r, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	if c.polls[hash] > 0 {
		c.polls[hash]--
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (c *FakeChain) apply(from common.Address, tx *types.Transaction) bool {
	if tx.To() == nil {
		return false
	}
	tok, ok := c.tokens[*tx.To()]
	if !ok || len(tx.Data()) < 4 {
		// Plain value transfers always succeed; native balances are not tracked.
		return !ok
	}
	method, err := erc20ABI.MethodById(tx.Data()[:4])
	if err != nil || method.Name != "transfer" {
		return false
	}
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		return false
	}
	to := args[0].(common.Address)
	amount := args[1].(*big.Int)

	have := balance(tok, from)
	if have.Cmp(amount) < 0 {
		return false
	}
	tok.Balances[from] = new(big.Int).Sub(have, amount)
	tok.Balances[to] = new(big.Int).Add(balance(tok, to), amount)
	return true
}

func balance(tok *MockToken, owner common.Address) *big.Int {
	if b, ok := tok.Balances[owner]; ok {
		return b
	}
	return new(big.Int)
}

// Dialer resolves RPC URLs to fake chains. Unknown URLs fail like an
// unreachable host.
func Dialer(chains map[string]*FakeChain) chain.Dialer {
	return func(_ context.Context, url string) (chain.Backend, error) {
		c, ok := chains[url]
		if !ok {
			return nil, fmt.Errorf("%w: dialing %s: connection refused", chain.ErrNetwork, url)
		}
		return c, nil
	}
}
