// Package validate checks recipient identifiers against the format rules of
// a ledger rail before any transfer is attempted.
package validate

import (
	"fmt"
	"strings"

	"ledgerfaucet/internal/identity"
	"ledgerfaucet/internal/token"
)

// Format records which identifier kind matched.
type Format string

const (
	FormatNone      Format = ""
	FormatPrincipal Format = "principal"
	FormatAccountID Format = "account_id"
)

// Reason classifies a validation failure.
type Reason string

const (
	ReasonMissing       Reason = "missing identifier"
	ReasonBadPrincipal  Reason = "invalid principal"
	ReasonBadIdentifier Reason = "invalid identifier"
)

// Example identifiers shown to users.
const (
	ExamplePrincipal = "rdmx6-jaaaa-aaaah-qcaiq-cai"
	ExampleAccountID = "d4685b31b51450508aff0d02b4f023b2a7d1f74b..."
)

// Error describes why an identifier was rejected.
type Error struct {
	Reason Reason
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Outcome is the result of validating one identifier.
type Outcome struct {
	Valid  bool
	Format Format

	// Text is the trimmed identifier.
	Text string

	// Principal is set when Format is FormatPrincipal.
	Principal identity.Principal

	Err *Error
}

// Validate checks text against the rules of tt. Legacy accepts a principal
// or a 64-character hex account identifier, principal checked first;
// Standard accepts principals only.
func Validate(text string, tt token.Type) Outcome {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return invalid(ReasonMissing, missingDetail(tt))
	}

	p, perr := identity.Parse(trimmed)
	if perr == nil {
		return Outcome{Valid: true, Format: FormatPrincipal, Text: trimmed, Principal: p}
	}

	switch tt {
	case token.Standard:
		return invalid(ReasonBadPrincipal,
			fmt.Sprintf("please enter a valid Principal (e.g., %s)", ExamplePrincipal))
	case token.Legacy:
		if identity.IsAccountIDHex(trimmed) {
			return Outcome{Valid: true, Format: FormatAccountID, Text: trimmed}
		}
		return invalid(ReasonBadIdentifier,
			"please enter a valid Principal or a 64-character hex Account Identifier")
	default:
		return invalid(ReasonBadIdentifier, fmt.Sprintf("unknown token type %s", tt))
	}
}

func invalid(reason Reason, detail string) Outcome {
	return Outcome{Err: &Error{Reason: reason, Detail: detail}}
}

func missingDetail(tt token.Type) string {
	if tt == token.Standard {
		return "please enter a Principal"
	}
	return "please enter a Principal or Account Identifier"
}

// InputHint is what a form shows next to the identifier field.
type InputHint struct {
	Label       string
	Placeholder string
}

// Hint returns the label and placeholder for tt's input field.
func Hint(tt token.Type) InputHint {
	if tt == token.Legacy {
		return InputHint{
			Label:       "Principal or Account Identifier",
			Placeholder: "e.g. " + ExampleAccountID,
		}
	}
	return InputHint{
		Label:       "Principal",
		Placeholder: "e.g. " + ExamplePrincipal,
	}
}
