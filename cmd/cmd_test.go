package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/mocks"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

// chainIDServer answers eth_chainId like a node on chain id.
func chainIDServer(t *testing.T, id string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.Unmarshal(body, &req); err != nil || req.Method != "eth_chainId" {
			http.Error(w, "unsupported", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": id})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConfigSetTokenPersists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, "--config", dir, "config", "set-token", "0xed24fc36d5ee211ea25a80239fb8c4cfd80f12ee", "9"))

	saved, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "0xeD24FC36d5Ee211Ea25A80239Fb8C4Cfd80f12Ee", saved.TokenAddress)
	assert.Equal(t, 9, saved.Decimals)
}

func TestConfigSetTokenRejectsBadAddress(t *testing.T) {
	assert.Error(t, run(t, "--config", t.TempDir(), "config", "set-token", "0x1234"))
}

func TestConfigSetNetworkUnknown(t *testing.T) {
	assert.Error(t, run(t, "--config", t.TempDir(), "config", "set-network", "atlantis"))
}

func TestNetworkAddChecksChainID(t *testing.T) {
	dir := t.TempDir()
	srv := chainIDServer(t, "0x7a69")

	err := run(t, "--config", dir, "network", "add", "--name", "hardhat", "--rpc", srv.URL, "--chain-id", "1")
	assert.ErrorContains(t, err, "chain id 31337")

	require.NoError(t, run(t, "--config", dir, "network", "add", "--name", "hardhat", "--rpc", srv.URL, "--chain-id", "31337"))
	saved, err := config.Load(dir)
	require.NoError(t, err)
	require.Len(t, saved.CustomNetworks, 1)
	assert.Equal(t, srv.URL, saved.CustomNetworks[0].RPCURL)

	cfg = saved
	n, err := newRegistry().GetByChainID(31337)
	require.NoError(t, err)
	assert.Equal(t, "hardhat", n.Name)

	require.NoError(t, run(t, "--config", dir, "config", "set-network", "hardhat"))
	require.NoError(t, run(t, "--config", dir, "network", "remove", "hardhat"))
	assert.ErrorIs(t, run(t, "--config", dir, "network", "remove", "hardhat"), config.ErrNetworkNotFound)
}

func TestNetworkAddRejectsBuiltinChain(t *testing.T) {
	srv := chainIDServer(t, "0x61")
	err := run(t, "--config", t.TempDir(), "network", "add", "--name", "mybnbt", "--rpc", srv.URL, "--chain-id", "97")
	assert.ErrorIs(t, err, config.ErrNetworkExists)
}

func TestHistoryEmpty(t *testing.T) {
	assert.NoError(t, run(t, "--config", t.TempDir(), "history"))
}

func TestNewFlowUsesNetworkRPC(t *testing.T) {
	var err error
	cfg, err = config.Load(t.TempDir())
	require.NoError(t, err)

	flow, n, err := newFlow()
	require.NoError(t, err)
	assert.Equal(t, "sepolia", n.Name)
	assert.Equal(t, n.RPC(), flow.Config().RPCEndpoint)

	cfg.RPCEndpoint = "http://127.0.0.1:8545"
	flow, _, err = newFlow()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8545", flow.Config().RPCEndpoint)
}

func writeABI(t *testing.T, dir, name string, d contract.Descriptor) {
	t.Helper()
	data, err := json.Marshal(d)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
}

func TestNewFlowLoadsTokenABI(t *testing.T) {
	dir := t.TempDir()
	writeABI(t, dir, "full.json", contract.ERC20Full)
	writeABI(t, dir, "meta.json", contract.ERC20Metadata)

	var err error
	cfg, err = config.Load(dir)
	require.NoError(t, err)

	cfg.TokenABI = "full.json"
	flow, _, err := newFlow()
	require.NoError(t, err)
	assert.Len(t, flow.Config().Interface, len(contract.ERC20Full))

	cfg.TokenABI = "meta.json"
	_, _, err = newFlow()
	assert.ErrorIs(t, err, contract.ErrMissingFunction)

	cfg.TokenABI = "absent.json"
	_, _, err = newFlow()
	assert.ErrorContains(t, err, "token ABI")
}

func TestConfigSetABIValidates(t *testing.T) {
	dir := t.TempDir()
	writeABI(t, dir, "meta.json", contract.ERC20Metadata)
	writeABI(t, dir, "full.json", contract.ERC20Full)

	assert.ErrorIs(t, run(t, "--config", dir, "config", "set-abi", "meta.json"), contract.ErrMissingFunction)
	require.NoError(t, run(t, "--config", dir, "config", "set-abi", "full.json"))

	saved, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "full.json"), saved.TokenABIPath())
}

func TestNewExtensionWithEnvKey(t *testing.T) {
	t.Setenv(config.EnvPrivateKey, "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	var err error
	cfg, err = config.Load(t.TempDir())
	require.NoError(t, err)

	ext, err := newExtension("")
	require.NoError(t, err)
	defer ext.Close()

	addr, ok := ext.SelectedAccount()
	require.True(t, ok)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", addr.Hex())
}

// useFakeChains points the wallet's dialer at fake chains and resets the
// package flags the command under test may set.
func useFakeChains(t *testing.T, chains map[string]*mocks.FakeChain) {
	t.Helper()
	dial = mocks.Dialer(chains)
	t.Cleanup(func() {
		dial = chain.Dial
		networkFlag = ""
	})
}

func TestNetworkFlagSwitchesWallet(t *testing.T) {
	t.Setenv(config.EnvPrivateKey, "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	useFakeChains(t, nil)
	var err error
	cfg, err = config.Load(t.TempDir())
	require.NoError(t, err)

	networkFlag = "bnbt"
	ext, err := newExtension("")
	require.NoError(t, err)
	defer ext.Close()
	assert.Equal(t, int64(97), ext.Network().ChainID)

	_, n, err := newFlow()
	require.NoError(t, err)
	assert.Equal(t, "bnbt", n.Name)

	networkFlag = "atlantis"
	_, err = newExtension("")
	assert.ErrorContains(t, err, "unknown network")
}

func TestTokenImportListsNetworkTokens(t *testing.T) {
	t.Setenv(config.EnvPrivateKey, "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	bnbtNet, err := chain.NewRegistry().GetByName("bnbt")
	require.NoError(t, err)

	bnbt := mocks.NewFakeChain(97)
	bnbt.DeployToken(common.HexToAddress("0xeD24FC36d5Ee211Ea25A80239Fb8C4Cfd80f12Ee"), "BUSD Token", "BUSD", 18)
	bnbt.DeployToken(common.HexToAddress("0x84b9B910527Ad5C03A9Ca831909E21e236EA7b06"), "ChainLink Token", "LINK", 18)
	useFakeChains(t, map[string]*mocks.FakeChain{bnbtNet.RPC(): bnbt})
	dir := t.TempDir()

	require.NoError(t, run(t, "--config", dir, "--network", "bnbt", "token", "import",
		"0xed24fc36d5ee211ea25a80239fb8c4cfd80f12ee", "0x84b9B910527Ad5C03A9Ca831909E21e236EA7b06"))

	// sepolia has no fake chain behind it, so the import must fail there
	err = run(t, "--config", dir, "--network", "sepolia", "token", "import", "0xed24fc36d5ee211ea25a80239fb8c4cfd80f12ee")
	assert.ErrorIs(t, err, chain.ErrNetwork)
}
