package validate

import (
	"math/rand"
	"strings"
	"testing"

	"ledgerfaucet/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPrincipal = "rdmx6-jaaaa-aaaah-qcaiq-cai"

const hexDigits = "0123456789abcdefABCDEF"

func randomHex(r *rand.Rand, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(hexDigits[r.Intn(len(hexDigits))])
	}
	return sb.String()
}

// =============================================================================
// EMPTY INPUT
// =============================================================================

func TestValidate_EmptyIsInvalidForEveryToken(t *testing.T) {
	for _, tt := range token.All {
		for _, text := range []string{"", "   ", "\t\n"} {
			out := Validate(text, tt)
			assert.False(t, out.Valid, "token=%s text=%q", tt, text)
			require.NotNil(t, out.Err)
			assert.Equal(t, ReasonMissing, out.Err.Reason)
			assert.Contains(t, out.Err.Error(), "missing identifier")
		}
	}
}

// =============================================================================
// LEGACY
// =============================================================================

func TestValidate_LegacyAcceptsAnyHexAccountID(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		s := randomHex(r, 64)
		out := Validate(s, token.Legacy)
		require.True(t, out.Valid, "expected %q to be valid", s)
		assert.Equal(t, FormatAccountID, out.Format)
		assert.Equal(t, s, out.Text)
		assert.True(t, out.Principal.IsZero())
	}
}

func TestValidate_LegacyPrefersPrincipal(t *testing.T) {
	out := Validate(validPrincipal, token.Legacy)
	require.True(t, out.Valid)
	assert.Equal(t, FormatPrincipal, out.Format)
	assert.Equal(t, validPrincipal, out.Principal.String())
}

func TestValidate_LegacyTrimsWhitespace(t *testing.T) {
	id := strings.Repeat("0a", 32)
	out := Validate("  "+id+"\n", token.Legacy)
	require.True(t, out.Valid)
	assert.Equal(t, id, out.Text)
}

func TestValidate_LegacyRejectsOtherText(t *testing.T) {
	for _, text := range []string{
		"not-a-principal",
		strings.Repeat("a", 63),
		strings.Repeat("a", 65),
		strings.Repeat("z", 64),
	} {
		out := Validate(text, token.Legacy)
		assert.False(t, out.Valid, text)
		require.NotNil(t, out.Err)
		assert.Equal(t, ReasonBadIdentifier, out.Err.Reason)
		assert.Equal(t, FormatNone, out.Format)
	}
}

// =============================================================================
// STANDARD
// =============================================================================

func TestValidate_StandardAcceptsPrincipal(t *testing.T) {
	out := Validate(validPrincipal, token.Standard)
	require.True(t, out.Valid)
	assert.Equal(t, FormatPrincipal, out.Format)
	assert.Nil(t, out.Err)
}

func TestValidate_StandardRejectsHexEvenWhenPatternMatches(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		s := randomHex(r, 64)
		out := Validate(s, token.Standard)
		assert.False(t, out.Valid, s)
		require.NotNil(t, out.Err)
		assert.Equal(t, ReasonBadPrincipal, out.Err.Reason)
	}
}

func TestValidate_StandardRejectsProse(t *testing.T) {
	out := Validate("not-a-principal", token.Standard)
	assert.False(t, out.Valid)
	require.NotNil(t, out.Err)
	assert.Contains(t, out.Err.Error(), ExamplePrincipal)
}

func TestValidate_Deterministic(t *testing.T) {
	inputs := []string{"", validPrincipal, strings.Repeat("F", 64), "junk"}
	for _, tt := range token.All {
		for _, in := range inputs {
			assert.Equal(t, Validate(in, tt), Validate(in, tt))
		}
	}
}

func TestHint(t *testing.T) {
	assert.Equal(t, "Principal or Account Identifier", Hint(token.Legacy).Label)
	assert.Equal(t, "Principal", Hint(token.Standard).Label)
	assert.Contains(t, Hint(token.Standard).Placeholder, ExamplePrincipal)
}
