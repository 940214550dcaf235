package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func signingWallet(t *testing.T) (*Wallet, *Manager) {
	t.Helper()
	mgr := NewManager()
	w, err := mgr.AddWithKey("dev", testPrivKeyHex)
	require.NoError(t, err)
	return w, mgr
}

func TestSignerAddress(t *testing.T) {
	w, mgr := signingWallet(t)
	assert.Equal(t, common.HexToAddress(testSignerAddr), NewSigner(w, mgr).Address())
}

func TestSignTxWithoutKey(t *testing.T) {
	w := &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeSigning}
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 21000, big.NewInt(1e9), nil)

	_, err := NewSigner(w, NewManager()).SignTx(tx, big.NewInt(1))
	assert.ErrorIs(t, err, ErrCannotSign)
}

func TestSignTxMissingKey(t *testing.T) {
	w := &Wallet{Name: "ghost", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3dapp.ghost"}
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 21000, big.NewInt(1e9), nil)

	_, err := NewSigner(w, NewManager()).SignTx(tx, big.NewInt(1))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSignDynamicFeeTxRecoversSender(t *testing.T) {
	w, mgr := signingWallet(t)
	chainID := big.NewInt(97)
	to := common.HexToAddress("0x779877A7B0D9E8603169DdbD7836e478b4624789")

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     3,
		GasTipCap: big.NewInt(1e9),
		GasFeeCap: big.NewInt(2e9),
		Gas:       60000,
		To:        &to,
		Data:      []byte{0xa9, 0x05, 0x9c, 0xbb},
	})

	signed, err := NewSigner(w, mgr).SignTx(tx, chainID)
	require.NoError(t, err)

	sender, err := types.Sender(types.NewLondonSigner(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), sender)
	assert.Equal(t, uint64(3), signed.Nonce())
	assert.Equal(t, chainID, signed.ChainId())
}
