// Package identity parses the two kinds of recipient identifiers a faucet
// transfer can address: principals and ledger account identifiers.
//
// The principal text codec itself (base32 with a CRC32 prefix) is owned by
// the Internet Computer agent library; this package only adapts it to a
// result-style API and enforces canonical text form.
package identity

import (
	"fmt"
	"strings"

	icprincipal "github.com/aviate-labs/agent-go/principal"
)

// Principal is a parsed principal identity.
type Principal struct {
	raw icprincipal.Principal
}

// FormatError is returned when text is not a well-formed principal.
type FormatError struct {
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid principal %q: %s", e.Text, e.Reason)
}

// Parse decodes principal text. The text must already be in canonical form
// (lowercase, dash-grouped); a text that decodes but re-encodes differently
// is rejected the same way the reference agents reject it.
func Parse(text string) (Principal, error) {
	if text == "" {
		return Principal{}, &FormatError{Text: text, Reason: "empty text"}
	}
	p, err := icprincipal.Decode(text)
	if err != nil {
		return Principal{}, &FormatError{Text: text, Reason: err.Error()}
	}
	if canonical := p.String(); canonical != text {
		return Principal{}, &FormatError{
			Text:   text,
			Reason: fmt.Sprintf("not in canonical form (expected %q)", canonical),
		}
	}
	return Principal{raw: p}, nil
}

// MustParse is Parse for constants; it panics on malformed text.
func MustParse(text string) Principal {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// IsPrincipal reports whether text parses as a principal.
func IsPrincipal(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// String returns the canonical textual encoding.
func (p Principal) String() string {
	if p.IsZero() {
		return ""
	}
	return p.raw.String()
}

// Bytes returns a copy of the raw principal bytes.
func (p Principal) Bytes() []byte {
	out := make([]byte, len(p.raw.Raw))
	copy(out, p.raw.Raw)
	return out
}

// IsZero reports whether p is the zero value (never produced by Parse).
func (p Principal) IsZero() bool {
	return p.raw.Raw == nil
}

// Equal reports whether two principals have the same bytes.
func (p Principal) Equal(other Principal) bool {
	return p.IsZero() == other.IsZero() && string(p.raw.Raw) == string(other.raw.Raw)
}

// MarshalText implements encoding.TextMarshaler.
func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Principal) UnmarshalText(text []byte) error {
	parsed, err := Parse(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
