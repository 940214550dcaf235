package contract

// Signatures the transfer flow calls. A custom descriptor must carry all three.
const (
	SigName      = "name()"
	SigBalanceOf = "balanceOf(address)"
	SigTransfer  = "transfer(address,uint256)"
)

// ERC20Minimal is the three-function interface the dApp binds to the token:
//
//	name()              → 0x06fdde03
//	balanceOf(address)  → 0x70a08231
//	transfer(a,u256)    → 0xa9059cbb
var ERC20Minimal = Descriptor{
	{
		Name: "name", Type: "function",
		Inputs: []ABIParam{}, Outputs: []ABIParam{{Name: "name", Type: "string"}},
		StateMutability: "view",
	},
	{
		Name: "balanceOf", Type: "function",
		Inputs:          []ABIParam{{Name: "_owner", Type: "address"}},
		Outputs:         []ABIParam{{Name: "balance", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "transfer", Type: "function",
		Inputs:          []ABIParam{{Name: "_to", Type: "address"}, {Name: "_value", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "success", Type: "bool"}},
		StateMutability: "nonpayable",
	},
}

// ERC20Metadata is what a wallet reads when a token is imported.
var ERC20Metadata = Descriptor{
	{
		Name: "symbol", Type: "function",
		Inputs: []ABIParam{}, Outputs: []ABIParam{{Name: "", Type: "string"}},
		StateMutability: "view",
	},
	{
		Name: "decimals", Type: "function",
		Inputs: []ABIParam{}, Outputs: []ABIParam{{Name: "", Type: "uint8"}},
		StateMutability: "view",
	},
}

// ERC20Full is the union the in-memory test chain understands.
var ERC20Full = append(append(Descriptor{}, ERC20Minimal...), ERC20Metadata...)
