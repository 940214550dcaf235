package chain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrChainNotFound is returned when a network is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Network holds everything a wallet needs to talk to one EVM chain. Name is
// the short name ethers reports for the chain id ("sepolia", "bnbt", ...);
// that is what the dApp page shows in #network.
type Network struct {
	Name          string   `json:"name"`
	DisplayName   string   `json:"display_name"`
	ChainID       int64    `json:"chain_id"`
	Symbol        string   `json:"symbol"`
	RPCURLs       []string `json:"rpc_urls"`
	BlockExplorer string   `json:"block_explorer"`
	IsTestnet     bool     `json:"is_testnet"`
}

// RPC returns the primary RPC endpoint.
func (n *Network) RPC() string {
	if len(n.RPCURLs) == 0 {
		return ""
	}
	return n.RPCURLs[0]
}

// TxURL links a transaction on the network's explorer, or "" without one.
func (n *Network) TxURL(hash string) string {
	if n.BlockExplorer == "" {
		return ""
	}
	return strings.TrimRight(n.BlockExplorer, "/") + "/tx/" + hash
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]int
	byID     map[int64]int
}

// NewRegistry returns a registry pre-loaded with the built-in networks.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]int),
		byID:   make(map[int64]int),
	}
	for _, n := range builtinNetworks() {
		r.Register(n) //nolint:errcheck
	}
	return r
}

// Register adds a network. Names are case-insensitive; a network with the
// same name or chain id is an error.
func (r *Registry) Register(n Network) error {
	n.Name = strings.ToLower(n.Name)
	if n.Name == "" || n.ChainID <= 0 {
		return fmt.Errorf("network needs a name and a positive chain id")
	}
	if _, ok := r.byName[n.Name]; ok {
		return fmt.Errorf("network %q already registered", n.Name)
	}
	if _, ok := r.byID[n.ChainID]; ok {
		return fmt.Errorf("chain id %d already registered", n.ChainID)
	}
	r.networks = append(r.networks, n)
	r.byName[n.Name] = len(r.networks) - 1
	r.byID[n.ChainID] = len(r.networks) - 1
	return nil
}

// All returns every network in registration order.
func (r *Registry) All() []Network {
	out := make([]Network, len(r.networks))
	copy(out, r.networks)
	return out
}

// GetByName finds a network by its short name (e.g. "sepolia").
func (r *Registry) GetByName(name string) (*Network, error) {
	i, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	n := r.networks[i]
	return &n, nil
}

// GetByChainID finds a network by its numeric chain id.
func (r *Registry) GetByChainID(id int64) (*Network, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	n := r.networks[i]
	return &n, nil
}

// NameOf returns the short name for a chain id, or "unknown" the way ethers
// labels chains it does not know.
func (r *Registry) NameOf(id int64) string {
	if n, err := r.GetByChainID(id); err == nil {
		return n.Name
	}
	return "unknown"
}

// --- network data ---

func builtinNetworks() []Network {
	return []Network{
		{
			Name: "homestead", DisplayName: "Ethereum Mainnet", ChainID: 1, Symbol: "ETH",
			RPCURLs:       []string{"https://ethereum-rpc.publicnode.com", "https://eth.llamarpc.com"},
			BlockExplorer: "https://etherscan.io",
		},
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111, Symbol: "SepoliaETH",
			RPCURLs:       []string{"https://ethereum-sepolia-rpc.publicnode.com", "https://rpc.sepolia.org"},
			BlockExplorer: "https://sepolia.etherscan.io",
			IsTestnet:     true,
		},
		{
			Name: "bnb", DisplayName: "BNB Smart Chain", ChainID: 56, Symbol: "BNB",
			RPCURLs:       []string{"https://bsc-dataseed.binance.org"},
			BlockExplorer: "https://bscscan.com",
		},
		{
			Name: "bnbt", DisplayName: "BNB Testnet Network", ChainID: 97, Symbol: "BNB",
			RPCURLs:       []string{"https://data-seed-prebsc-1-s1.binance.org:8545/"},
			BlockExplorer: "https://testnet.bscscan.com",
			IsTestnet:     true,
		},
		{
			Name: "matic", DisplayName: "Polygon", ChainID: 137, Symbol: "POL",
			RPCURLs:       []string{"https://polygon-rpc.com"},
			BlockExplorer: "https://polygonscan.com",
		},
		{
			Name: "arbitrum", DisplayName: "Arbitrum One", ChainID: 42161, Symbol: "ETH",
			RPCURLs:       []string{"https://arb1.arbitrum.io/rpc"},
			BlockExplorer: "https://arbiscan.io",
		},
		{
			Name: "optimism", DisplayName: "OP Mainnet", ChainID: 10, Symbol: "ETH",
			RPCURLs:       []string{"https://mainnet.optimism.io"},
			BlockExplorer: "https://optimistic.etherscan.io",
		},
		{
			Name: "base", DisplayName: "Base", ChainID: 8453, Symbol: "ETH",
			RPCURLs:       []string{"https://mainnet.base.org"},
			BlockExplorer: "https://basescan.org",
		},
		{
			Name: "base-sepolia", DisplayName: "Base Sepolia", ChainID: 84532, Symbol: "ETH",
			RPCURLs:       []string{"https://sepolia.base.org"},
			BlockExplorer: "https://sepolia.basescan.org",
			IsTestnet:     true,
		},
	}
}
