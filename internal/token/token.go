// Package token defines the two faucet rails and their display names.
package token

import (
	"fmt"
	"strings"
)

// Type selects a ledger rail: the validation rule and the remote operation.
type Type int

const (
	// Legacy is the account-identifier ledger (TESTICP).
	Legacy Type = iota
	// Standard is the token-standard ledger (TICRC1).
	Standard
)

// All lists the rails in display order.
var All = []Type{Legacy, Standard}

// TransferAmount is the number of whole tokens one request transfers.
const TransferAmount = 10

// String returns the lowercase rail name used in flags and config.
func (t Type) String() string {
	switch t {
	case Legacy:
		return "legacy"
	case Standard:
		return "standard"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Symbol returns the ledger ticker shown to users.
func (t Type) Symbol() string {
	switch t {
	case Legacy:
		return "TESTICP"
	case Standard:
		return "TICRC1"
	default:
		return t.String()
	}
}

// Description is the short subtitle shown under the symbol.
func (t Type) Description() string {
	switch t {
	case Legacy:
		return "Test ICP tokens"
	case Standard:
		return "Test ICRC-1 tokens"
	default:
		return ""
	}
}

// Valid reports whether t is one of the known rails.
func (t Type) Valid() bool {
	return t == Legacy || t == Standard
}

// Next cycles to the following rail.
func (t Type) Next() Type {
	if t == Legacy {
		return Standard
	}
	return Legacy
}

// Parse accepts a rail name or ticker, case-insensitively.
func Parse(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy", "testicp", "icp":
		return Legacy, nil
	case "standard", "ticrc1", "icrc1":
		return Standard, nil
	default:
		return Legacy, fmt.Errorf("unknown token type %q (want legacy or standard)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid token type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
