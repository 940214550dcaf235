package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "w3dapp-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "w3dapp")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "W3DAPP_CONFIG_DIR="+configDir, "W3DAPP_PRIVATE_KEY=")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "w3dapp")
}

func TestHelpCommand(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--help")
	require.NoError(t, err)
	for _, sub := range []string{"balance", "transfer", "serve", "wallet", "network", "history", "token"} {
		assert.Contains(t, strings.ToLower(out), sub)
	}
}

func TestNetworkList(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "network", "list")
	require.NoError(t, err)
	for _, n := range []string{"sepolia", "bnbt", "homestead"} {
		assert.Contains(t, out, n, "network list should contain %s", n)
	}
}

func TestConfigSetNetwork(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set-network", "bnbt")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `"default_network": "bnbt"`)
}

func TestConfigSetNetworkUnknown(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "config", "set-network", "unknownchain99")
	assert.Error(t, err)
}

func TestConfigListShowsDefaults(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0x779877A7B0D9E8603169DdbD7836e478b4624789")
	assert.Contains(t, out, "localhost:3000")
}

func TestDotEnvOverridesToken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("W3DAPP_TOKEN_ADDRESS=0xeD24FC36d5Ee211Ea25A80239Fb8C4Cfd80f12Ee\n"), 0o600))

	out, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0xeD24FC36d5Ee211Ea25A80239Fb8C4Cfd80f12Ee")
}

func TestHistoryEmpty(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No transfers yet")
}

func TestWalletListEmpty(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No accounts yet")
}

func TestTransferNeedsTwoArgs(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "transfer", "0xc3c6f796335f9d1cceeb4f0ad92a21d6ad48a117")
	assert.Error(t, err)
}

func TestUnknownCommandShowsError(t *testing.T) {
	out, _ := runCLI(t, t.TempDir(), "unknowncommand")
	assert.Contains(t, strings.ToLower(out), "unknown command")
}
