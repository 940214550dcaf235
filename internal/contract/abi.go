package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// ErrMissingFunction is returned when a descriptor lacks a required entry.
var ErrMissingFunction = errors.New("function missing from interface descriptor")

// ABIEntry is one ABI entry (function, event, etc.).
type ABIEntry struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs"`
	StateMutability string     `json:"stateMutability,omitempty"`
}

// ABIParam is a parameter in an ABI entry.
type ABIParam struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed,omitempty"`
}

// IsReadFunction returns true if the function is read-only (view/pure).
func (e ABIEntry) IsReadFunction() bool {
	return e.Type == "function" &&
		(e.StateMutability == "view" || e.StateMutability == "pure")
}

// IsWriteFunction returns true if the function modifies state.
func (e ABIEntry) IsWriteFunction() bool {
	return e.Type == "function" &&
		(e.StateMutability == "nonpayable" || e.StateMutability == "payable")
}

// Signature is the canonical form used for selectors, e.g. "transfer(address,uint256)".
func (e ABIEntry) Signature() string {
	types := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		types[i] = p.Type
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector computes the 4-byte function selector as 0x-prefixed hex.
func (e ABIEntry) Selector() string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(e.Signature()))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// Descriptor is a contract interface: the ABI entries a handle may use.
type Descriptor []ABIEntry

// Function finds a function entry by name.
func (d Descriptor) Function(name string) (ABIEntry, bool) {
	for _, e := range d {
		if e.Type == "function" && e.Name == name {
			return e, true
		}
	}
	return ABIEntry{}, false
}

// Require checks that every given selector ("transfer(address,uint256)"
// form) is present with matching argument types.
func (d Descriptor) Require(signatures ...string) error {
	have := make(map[string]bool, len(d))
	for _, e := range d {
		if e.Type == "function" {
			have[e.Signature()] = true
		}
	}
	var missing []string
	for _, sig := range signatures {
		if !have[sig] {
			missing = append(missing, sig)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFunction, strings.Join(missing, ", "))
	}
	return nil
}

// ABI converts the descriptor into a go-ethereum ABI for packing and unpacking.
func (d Descriptor) ABI() (abi.ABI, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return abi.ABI{}, err
	}
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parsing interface descriptor: %w", err)
	}
	return parsed, nil
}

// ParseDescriptor parses a JSON ABI array. Hardhat/Foundry artifacts with an
// "abi" key are accepted too.
func ParseDescriptor(data []byte) (Descriptor, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var artifact struct {
			ABI Descriptor `json:"abi"`
		}
		if err := json.Unmarshal(data, &artifact); err != nil {
			return nil, fmt.Errorf("invalid artifact JSON: %w", err)
		}
		if artifact.ABI == nil {
			return nil, fmt.Errorf("file is a JSON object without an \"abi\" key")
		}
		return artifact.ABI, nil
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("invalid ABI JSON: expected an array of function/event definitions: %w", err)
	}
	if len(d) == 0 {
		return nil, fmt.Errorf("ABI is empty (no functions or events found)")
	}
	return d, nil
}

// LoadDescriptor reads an ABI file from disk.
func LoadDescriptor(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ABI file: %w", err)
	}
	d, err := ParseDescriptor(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
