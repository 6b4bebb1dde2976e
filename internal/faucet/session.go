// Package faucet holds the request state machine: it owns the session,
// validates identifiers, dispatches at most one transfer at a time and fires
// the feedback effect when a transfer lands.
package faucet

import (
	"fmt"
	"strings"

	"ledgerfaucet/internal/token"
)

// TokenType selects the ledger rail of a request.
type TokenType = token.Type

const (
	TokenLegacy   = token.Legacy
	TokenStandard = token.Standard
)

// ParseTokenType accepts a rail name or ticker, case-insensitively.
func ParseTokenType(s string) (TokenType, error) {
	return token.Parse(s)
}

// StateKind is the phase of the current request.
type StateKind int

const (
	Idle StateKind = iota
	Pending
	Succeeded
	Failed
)

func (k StateKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k StateKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *StateKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "idle":
		*k = Idle
	case "pending":
		*k = Pending
	case "succeeded":
		*k = Succeeded
	case "failed":
		*k = Failed
	default:
		return fmt.Errorf("unknown state %q", text)
	}
	return nil
}

// State is the request state. Message is set for Succeeded and Failed;
// Err is set for Failed only and is either a *ValidationError or a
// *RemoteError.
type State struct {
	Kind    StateKind `json:"kind"`
	Message string    `json:"message,omitempty"`
	Err     error     `json:"-"`
}

// Terminal reports whether the state is Succeeded or Failed.
func (s State) Terminal() bool {
	return s.Kind == Succeeded || s.Kind == Failed
}

// Session is the aggregate owned by an Orchestrator.
type Session struct {
	SelectedToken TokenType `json:"selected_token"`
	InputText     string    `json:"input_text"`
	State         State     `json:"state"`

	// Attempt is the id of the most recent request that reached Pending.
	Attempt string `json:"attempt,omitempty"`
}

// NewSession returns the session every run starts with.
func NewSession() Session {
	return Session{SelectedToken: TokenLegacy, State: State{Kind: Idle}}
}

// Snapshot is a copy of the session handed to renderers.
type Snapshot struct {
	Session
	InputsDisabled bool `json:"inputs_disabled"`

	// Version increases with every session change. A snapshot with a lower
	// Version than one already seen is stale.
	Version uint64 `json:"version"`
}

// Newer reports whether s describes a later session than prev.
func (s Snapshot) Newer(prev Snapshot) bool {
	return s.Version > prev.Version
}

// SuccessMessage is the status shown when the backend returns no text.
func SuccessMessage(t TokenType) string {
	return fmt.Sprintf("Success! %d %s tokens have been transferred to your account.",
		token.TransferAmount, t.Symbol())
}
