package config

import "time"

// LINK on Sepolia, the token the demo page was built against.
const (
	DefaultTokenAddress = "0x779877A7B0D9E8603169DdbD7836e478b4624789"
	DefaultTokenNetwork = "sepolia"
	DefaultDecimals     = 18
	DefaultListenAddr   = "localhost:3000"
)

const (
	RPCDialTimeout      = 10 * time.Second
	TxConfirmTimeout    = 3 * time.Minute // caller-side deadline for settlement
	ReceiptPollInterval = 2 * time.Second
	ApprovalTimeout     = 5 * time.Minute // how long a wallet request may stay pending
)
