package transfer

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Outcome classifies how a submitted transfer ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeConfirmed
	OutcomeRejected
	OutcomeError
)

// Status strings shown in #transactionStatus.
const (
	StatusConfirmed = "Transaction confirmed"
	StatusRejected  = "Transaction rejected"
	StatusError     = "Error"
)

// Status is the user-facing text for the outcome. OutcomeNone has none.
func (o Outcome) Status() string {
	switch o {
	case OutcomeConfirmed:
		return StatusConfirmed
	case OutcomeRejected:
		return StatusRejected
	case OutcomeError:
		return StatusError
	}
	return ""
}

// String is a short machine label, used for metrics and history.
func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeRejected:
		return "rejected"
	case OutcomeError:
		return "error"
	}
	return "none"
}

// Request is what the user typed into the recipient and amount inputs.
type Request struct {
	Recipient string
	Amount    string
}

// Result is the state a transfer leaves behind. Err holds the cause of a
// Rejected or Error outcome and never leaks into Status.
type Result struct {
	Request Request
	Outcome Outcome
	Status  string
	TxHash  common.Hash
	Receipt *types.Receipt
	Err     error
	Elapsed time.Duration
}

// Balance is the signer's token balance.
type Balance struct {
	Account   common.Address
	Raw       *big.Int
	Formatted string
}
