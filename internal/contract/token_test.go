package contract

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	linkAddr  = common.HexToAddress("0x779877A7B0D9E8603169DdbD7836e478b4624789")
	aliceAddr = common.HexToAddress("0x2060266bA136DC0b2f4D5Cebd147209F0954C756")
	bobAddr   = common.HexToAddress("0x87028e52304A3d58D6d48DC5a864815Ab70fB6F5")
)

// stubCaller answers eth_call by method selector.
type stubCaller struct {
	byMethod map[string][]interface{}
	err      error
	last     ethereum.CallMsg
}

func (s *stubCaller) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	s.last = call
	if s.err != nil {
		return nil, s.err
	}
	parsed, _ := ERC20Full.ABI()
	m, err := parsed.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	out, ok := s.byMethod[m.Name]
	if !ok {
		return nil, nil
	}
	return m.Outputs.Pack(out...)
}

type recordingTransactor struct {
	call ethereum.CallMsg
}

func (r *recordingTransactor) SendTransaction(_ context.Context, call ethereum.CallMsg) (common.Hash, error) {
	r.call = call
	return common.HexToHash("0xfeed"), nil
}

func newToken(t *testing.T, c chain.Caller) *Token {
	t.Helper()
	tok, err := NewToken(linkAddr, ERC20Full, c)
	require.NoError(t, err)
	return tok
}

func TestTokenName(t *testing.T) {
	c := &stubCaller{byMethod: map[string][]interface{}{"name": {"ChainLink Token"}}}

	name, err := newToken(t, c).Name(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ChainLink Token", name)
	assert.Equal(t, linkAddr, *c.last.To)
}

func TestTokenBalanceOf(t *testing.T) {
	want, _ := new(big.Int).SetString("20000000000000000000", 10)
	c := &stubCaller{byMethod: map[string][]interface{}{"balanceOf": {want}}}

	got, err := newToken(t, c).BalanceOf(context.Background(), aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "0x70a08231", hexSelector(c.last.Data))
}

func TestTokenMetadata(t *testing.T) {
	c := &stubCaller{byMethod: map[string][]interface{}{"symbol": {"BUSD"}, "decimals": {uint8(18)}}}
	tok := newToken(t, c)

	symbol, err := tok.Symbol(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BUSD", symbol)

	decimals, err := tok.Decimals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint8(18), decimals)
}

func TestTokenEmptyResultIsNoContract(t *testing.T) {
	c := &stubCaller{byMethod: map[string][]interface{}{}}

	_, err := newToken(t, c).Name(context.Background())
	assert.ErrorIs(t, err, ErrNoContract)
}

func TestTokenCallErrorIsNetwork(t *testing.T) {
	c := &stubCaller{err: errors.New("dial tcp: connection refused")}

	_, err := newToken(t, c).BalanceOf(context.Background(), aliceAddr)
	assert.ErrorIs(t, err, chain.ErrNetwork)
}

func TestTokenTransferEncodesCall(t *testing.T) {
	tr := &recordingTransactor{}
	amount, _ := new(big.Int).SetString("2000000000000000000", 10)

	hash, err := newToken(t, &stubCaller{}).Transfer(context.Background(), tr, aliceAddr, bobAddr, amount)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xfeed"), hash)

	assert.Equal(t, aliceAddr, tr.call.From)
	assert.Equal(t, linkAddr, *tr.call.To)
	require.Len(t, tr.call.Data, 4+32+32)
	assert.Equal(t, "0xa9059cbb", hexSelector(tr.call.Data))
	assert.Equal(t, bobAddr, common.BytesToAddress(tr.call.Data[4:36]))
	assert.Equal(t, amount, new(big.Int).SetBytes(tr.call.Data[36:68]))
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("0xc3c6f796335f9d1cceeb4f0ad92a21d6ad48a117")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xc3c6f796335f9d1cceeb4f0ad92a21d6ad48a117"), a)

	for _, bad := range []string{"", "0x123", "hello", "0xc3c6f796335f9d1cceeb4f0ad92a21d6ad48a11z"} {
		_, err := ParseAddress(bad)
		assert.ErrorIs(t, err, ErrInvalidAddress, bad)
	}
}

func hexSelector(data []byte) string {
	return "0x" + common.Bytes2Hex(data[:4])
}
