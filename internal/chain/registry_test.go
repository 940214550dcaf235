package chain_test

import (
	"testing"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetByName(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		name    string
		chainID int64
	}{
		{"homestead", 1},
		{"sepolia", 11155111},
		{"bnb", 56},
		{"bnbt", 97},
		{"matic", 137},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := registry.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.chainID, n.ChainID)
		})
	}
}

func TestRegistryGetByNameCaseInsensitive(t *testing.T) {
	n, err := chain.NewRegistry().GetByName("SEPOLIA")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", n.Name)
}

func TestRegistryGetUnknown(t *testing.T) {
	registry := chain.NewRegistry()
	_, err := registry.GetByName("unknownchain")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)

	_, err = registry.GetByChainID(999999)
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestRegistryNameOf(t *testing.T) {
	registry := chain.NewRegistry()
	assert.Equal(t, "sepolia", registry.NameOf(11155111))
	assert.Equal(t, "bnbt", registry.NameOf(97))
	assert.Equal(t, "unknown", registry.NameOf(31337))
}

func TestRegistryRegister(t *testing.T) {
	registry := chain.NewRegistry()
	require.NoError(t, registry.Register(chain.Network{Name: "Anvil", ChainID: 31337, RPCURLs: []string{"http://127.0.0.1:8545"}}))

	n, err := registry.GetByChainID(31337)
	require.NoError(t, err)
	assert.Equal(t, "anvil", n.Name)
	assert.Equal(t, "http://127.0.0.1:8545", n.RPC())
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	registry := chain.NewRegistry()
	assert.Error(t, registry.Register(chain.Network{Name: "sepolia", ChainID: 123}))
	assert.Error(t, registry.Register(chain.Network{Name: "other", ChainID: 97}))
	assert.Error(t, registry.Register(chain.Network{Name: "", ChainID: 5}))
}

func TestRegistryReturnsCopies(t *testing.T) {
	registry := chain.NewRegistry()
	n, _ := registry.GetByName("sepolia")
	n.Name = "mutated"

	again, _ := registry.GetByName("sepolia")
	assert.Equal(t, "sepolia", again.Name)
}

func TestAllNetworksHaveRPC(t *testing.T) {
	for _, n := range chain.NewRegistry().All() {
		t.Run(n.Name, func(t *testing.T) {
			assert.NotEmpty(t, n.RPC(), "network %s has no RPC", n.Name)
			assert.NotEmpty(t, n.Symbol)
		})
	}
}

func TestTxURL(t *testing.T) {
	n, _ := chain.NewRegistry().GetByName("sepolia")
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", n.TxURL("0xabc"))

	bare := chain.Network{}
	assert.Empty(t, bare.TxURL("0xabc"))
}
