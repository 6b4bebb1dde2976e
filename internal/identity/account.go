package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"regexp"
)

// AccountIDHexLen is the length of a hex-encoded account identifier.
const AccountIDHexLen = 64

var accountIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// AccountID is a legacy ledger account identifier: a big-endian CRC32 of
// the hash followed by the 28-byte SHA-224 hash itself.
type AccountID [32]byte

// Subaccount selects one of a principal's accounts.
type Subaccount [32]byte

// DefaultSubaccount is the all-zero subaccount.
var DefaultSubaccount Subaccount

// IsAccountIDHex reports whether text has the shape of an account
// identifier. It does not verify the embedded checksum.
func IsAccountIDHex(text string) bool {
	return accountIDPattern.MatchString(text)
}

// ParseAccountID decodes a hex account identifier and verifies its checksum.
func ParseAccountID(text string) (AccountID, error) {
	var id AccountID
	if !IsAccountIDHex(text) {
		return id, fmt.Errorf("account identifier must be %d hex characters", AccountIDHexLen)
	}
	if _, err := hex.Decode(id[:], []byte(text)); err != nil {
		return id, fmt.Errorf("decode account identifier: %w", err)
	}
	want := binary.BigEndian.Uint32(id[:4])
	if got := crc32.ChecksumIEEE(id[4:]); got != want {
		return AccountID{}, fmt.Errorf("account identifier checksum mismatch: %08x != %08x", got, want)
	}
	return id, nil
}

// NewAccountID derives the account identifier of (owner, sub).
func NewAccountID(owner Principal, sub Subaccount) AccountID {
	h := sha256.New224()
	h.Write([]byte("\x0Aaccount-id"))
	h.Write(owner.raw.Raw)
	h.Write(sub[:])
	sum := h.Sum(nil)

	var id AccountID
	binary.BigEndian.PutUint32(id[:4], crc32.ChecksumIEEE(sum))
	copy(id[4:], sum)
	return id
}

// String returns the lowercase hex form.
func (id AccountID) String() string {
	return hex.EncodeToString(id[:])
}
