package config

// Config holds all w3dapp configuration.
type Config struct {
	DefaultNetwork string         `json:"default_network"`
	TokenAddress   string         `json:"token_address"`
	RPCEndpoint    string         `json:"rpc_endpoint,omitempty"` // empty = first RPC of DefaultNetwork
	Decimals       int            `json:"decimals"`
	ListenAddr     string         `json:"listen_addr"`
	HistoryFile    string         `json:"history_file,omitempty"` // relative to the config dir
	TokenABI       string         `json:"token_abi,omitempty"`    // empty = built-in ERC-20 subset
	CustomNetworks []NetworkEntry `json:"custom_networks"`

	// internal: config dir path used for Save()
	configDir string
	// private key handed over through W3DAPP_PRIVATE_KEY; never written to disk
	privateKey      string
	keyringPassword string
}

// NetworkEntry is a user-added EVM network, the same fields a wallet asks
// for in its "add network" form.
type NetworkEntry struct {
	Name          string `json:"name"`
	DisplayName   string `json:"display_name,omitempty"`
	RPCURL        string `json:"rpc_url"`
	ChainID       int64  `json:"chain_id"`
	Symbol        string `json:"symbol"`
	BlockExplorer string `json:"block_explorer,omitempty"`
	IsTestnet     bool   `json:"is_testnet"`
}
