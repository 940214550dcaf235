package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides. A .env file in the working directory or the config
// dir is loaded first; variables already set in the process win.
const (
	EnvConfigDir    = "W3DAPP_CONFIG_DIR"
	EnvRPCURL       = "W3DAPP_RPC_URL"
	EnvTokenAddress = "W3DAPP_TOKEN_ADDRESS"
	EnvNetwork      = "W3DAPP_NETWORK"
	EnvPrivateKey   = "W3DAPP_PRIVATE_KEY"
	EnvListenAddr   = "W3DAPP_LISTEN_ADDR"
	EnvTokenABI     = "W3DAPP_TOKEN_ABI"

	// EnvKeyringPassword unlocks the file keyring on hosts without an OS
	// keychain.
	EnvKeyringPassword = "W3DAPP_KEYRING_PASSWORD"
)

const (
	configFile         = "config.json"
	walletsFile        = "wallets.json"
	defaultHistoryFile = "history.db"
)

var (
	ErrNetworkExists   = errors.New("network already exists")
	ErrNetworkNotFound = errors.New("network not found")
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.w3dapp.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3dapp")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	if err := loadDotEnv(dir); err != nil {
		return nil, err
	}

	cfg := defaults(dir)
	path := filepath.Join(dir, configFile)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		cfg.configDir = dir
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save writes the config to disk. Environment overrides are persisted as
// they currently stand; the private key never is.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where the wallet extension keeps its account metadata.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// HistoryPath is the bbolt file holding settled transfers.
func (c *Config) HistoryPath() string {
	name := c.HistoryFile
	if name == "" {
		name = defaultHistoryFile
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.configDir, name)
}

// TokenABIPath is the ABI file describing the token contract, or "" when
// the built-in ERC-20 descriptor is used. Relative paths resolve against
// the config dir.
func (c *Config) TokenABIPath() string {
	if c.TokenABI == "" || filepath.IsAbs(c.TokenABI) {
		return c.TokenABI
	}
	return filepath.Join(c.configDir, c.TokenABI)
}

// PrivateKey returns the key supplied through W3DAPP_PRIVATE_KEY, if any.
func (c *Config) PrivateKey() string {
	return c.privateKey
}

// KeyringPassword returns the file keyring password from the environment.
func (c *Config) KeyringPassword() string {
	return c.keyringPassword
}

// AddNetwork registers a custom network.
func (c *Config) AddNetwork(n NetworkEntry) error {
	n.Name = strings.ToLower(n.Name)
	if slices.ContainsFunc(c.CustomNetworks, func(e NetworkEntry) bool {
		return e.Name == n.Name || e.ChainID == n.ChainID
	}) {
		return fmt.Errorf("%w: %s (chain %d)", ErrNetworkExists, n.Name, n.ChainID)
	}
	c.CustomNetworks = append(c.CustomNetworks, n)
	return nil
}

// RemoveNetwork deletes a custom network by name.
func (c *Config) RemoveNetwork(name string) error {
	idx := slices.IndexFunc(c.CustomNetworks, func(e NetworkEntry) bool {
		return e.Name == strings.ToLower(name)
	})
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrNetworkNotFound, name)
	}
	c.CustomNetworks = slices.Delete(c.CustomNetworks, idx, idx+1)
	return nil
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: DefaultTokenNetwork,
		TokenAddress:   DefaultTokenAddress,
		Decimals:       DefaultDecimals,
		ListenAddr:     DefaultListenAddr,
		CustomNetworks: []NetworkEntry{},
		configDir:      dir,
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRPCURL); v != "" {
		c.RPCEndpoint = v
	}
	if v := os.Getenv(EnvTokenAddress); v != "" {
		c.TokenAddress = v
	}
	if v := os.Getenv(EnvNetwork); v != "" {
		c.DefaultNetwork = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvTokenABI); v != "" {
		c.TokenABI = v
	}
	c.privateKey = os.Getenv(EnvPrivateKey)
	c.keyringPassword = os.Getenv(EnvKeyringPassword)
}

func loadDotEnv(dir string) error {
	for _, p := range []string{".env", filepath.Join(dir, ".env")} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}
