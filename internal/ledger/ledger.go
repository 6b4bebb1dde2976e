// Package ledger is an in-process stand-in for the faucet service and the two
// ledgers behind it. It keeps balances and a block log per ledger and applies
// the same transfer, fee and identifier rules as the deployed faucet.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledgerfaucet/internal/identity"
	"ledgerfaucet/internal/logging"
	"ledgerfaucet/internal/remote"
	"ledgerfaucet/internal/token"
	"ledgerfaucet/internal/validate"
)

const (
	// E8sPerToken is the number of base units in one token.
	E8sPerToken uint64 = 1_0000_0000
	// TransferAmountE8s is what every request sends.
	TransferAmountE8s = token.TransferAmount * E8sPerToken
	// NonMinterFeeE8s is charged by ledgers on which the faucet is not the minter.
	NonMinterFeeE8s uint64 = 10_000
)

// Well-known canisters of the public test deployment.
const (
	FaucetCanister         = "nqoci-rqaaa-aaaap-qp53q-cai"
	LegacyLedgerCanister   = "xafvr-biaaa-aaaai-aql5q-cai"
	StandardLedgerCanister = "3jkp5-oyaaa-aaaaj-azwqa-cai"
)

// LedgerConfig describes one ledger.
type LedgerConfig struct {
	CanisterID string `yaml:"canister_id" json:"canister_id"`
	// IsMint marks the faucet as the ledger's minter: no fee, no balance limit.
	IsMint bool `yaml:"is_mint" json:"is_mint"`
	// InitialBalanceE8s funds the faucet account when IsMint is false.
	InitialBalanceE8s uint64 `yaml:"initial_balance_e8s" json:"initial_balance_e8s"`
}

// Config describes the faucet and its ledgers.
type Config struct {
	FaucetID string       `yaml:"faucet_id" json:"faucet_id"`
	Legacy   LedgerConfig `yaml:"legacy" json:"legacy"`
	Standard LedgerConfig `yaml:"standard" json:"standard"`
}

// DefaultConfig mirrors the public test deployment with a funded,
// non-minting faucet.
func DefaultConfig() Config {
	funds := 1_000_000 * E8sPerToken
	return Config{
		FaucetID: FaucetCanister,
		Legacy:   LedgerConfig{CanisterID: LegacyLedgerCanister, InitialBalanceE8s: funds},
		Standard: LedgerConfig{CanisterID: StandardLedgerCanister, InitialBalanceE8s: funds},
	}
}

// Block is one committed transfer.
type Block struct {
	Index  uint64
	Method string // "icrc1_transfer" or "transfer"
	To     identity.AccountID
	Amount uint64
	Fee    uint64
	Time   time.Time
}

// Receipt describes a completed transfer.
type Receipt struct {
	Token      token.Type
	BlockIndex uint64
	To         identity.AccountID
	Amount     uint64
	Fee        uint64
}

type book struct {
	canister identity.Principal
	mint     bool
	balances map[identity.AccountID]uint64
	blocks   []Block
}

// Simulator implements the faucet's transfer operations against in-memory
// ledgers. It is safe for concurrent use.
type Simulator struct {
	faucet  identity.Principal
	account identity.AccountID
	now     func() time.Time

	mu    sync.Mutex
	books map[token.Type]*book
}

// NewSimulator creates a simulator from cfg.
func NewSimulator(cfg Config) (*Simulator, error) {
	faucet, err := identity.Parse(cfg.FaucetID)
	if err != nil {
		return nil, fmt.Errorf("faucet id: %w", err)
	}

	s := &Simulator{
		faucet:  faucet,
		account: identity.NewAccountID(faucet, identity.DefaultSubaccount),
		now:     time.Now,
		books:   make(map[token.Type]*book, 2),
	}
	for tt, lc := range map[token.Type]LedgerConfig{token.Legacy: cfg.Legacy, token.Standard: cfg.Standard} {
		canister, err := identity.Parse(lc.CanisterID)
		if err != nil {
			return nil, fmt.Errorf("%s ledger canister: %w", tt, err)
		}
		b := &book{canister: canister, mint: lc.IsMint, balances: make(map[identity.AccountID]uint64)}
		if !lc.IsMint {
			b.balances[s.account] = lc.InitialBalanceE8s
		}
		s.books[tt] = b
	}
	return s, nil
}

// AccountIdentifier returns the hex account identifier of the faucet's
// default subaccount.
func (s *Simulator) AccountIdentifier() string {
	return s.account.String()
}

// Transfer sends TransferAmountE8s on the ledger of tt. On the legacy
// ledger identifier may be a principal or a hex account identifier; on the
// standard ledger it must be a principal.
func (s *Simulator) Transfer(ctx context.Context, tt token.Type, identifier string) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", remote.ErrTransport, err)
	}

	to, method, err := resolve(tt, identifier)
	if err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[tt]
	if !ok {
		return Receipt{}, reject("unknown ledger %s", tt)
	}

	fee := NonMinterFeeE8s
	if b.mint {
		fee = 0
	} else {
		have := b.balances[s.account]
		if have < TransferAmountE8s+fee {
			logging.Devnet("%s transfer refused: faucet balance %s", tt, FormatE8s(have))
			return Receipt{}, reject("InsufficientFunds: faucet balance is %s %s", FormatE8s(have), tt.Symbol())
		}
		b.balances[s.account] = have - TransferAmountE8s - fee
	}
	b.balances[to] += TransferAmountE8s

	blk := Block{
		Index:  uint64(len(b.blocks)),
		Method: method,
		To:     to,
		Amount: TransferAmountE8s,
		Fee:    fee,
		Time:   s.now(),
	}
	b.blocks = append(b.blocks, blk)
	logging.Devnet("%s block %d: %s to %s (fee %d)", tt, blk.Index, method, to, fee)

	return Receipt{Token: tt, BlockIndex: blk.Index, To: to, Amount: blk.Amount, Fee: fee}, nil
}

func resolve(tt token.Type, identifier string) (identity.AccountID, string, error) {
	if p, err := identity.Parse(identifier); err == nil {
		return identity.NewAccountID(p, identity.DefaultSubaccount), "icrc1_transfer", nil
	}
	if tt == token.Legacy {
		if id, err := identity.ParseAccountID(identifier); err == nil {
			return id, "transfer", nil
		}
		return identity.AccountID{}, "", reject(
			"Invalid identifier format: %s. Expected either a Principal (e.g., %s) or Account Identifier (e.g., %s)",
			identifier, validate.ExamplePrincipal, validate.ExampleAccountID)
	}
	return identity.AccountID{}, "", reject("Invalid principal: %s", identifier)
}

func reject(format string, args ...interface{}) error {
	return &remote.RejectedError{Status: 422, Message: fmt.Sprintf(format, args...)}
}

// TransferLegacy sends tokens on the legacy ledger. The faucet returns no
// text, so the message is always empty.
func (s *Simulator) TransferLegacy(ctx context.Context, identifier string) (string, error) {
	_, err := s.Transfer(ctx, token.Legacy, identifier)
	return "", err
}

// TransferStandard sends tokens on the standard ledger.
func (s *Simulator) TransferStandard(ctx context.Context, owner identity.Principal) error {
	_, err := s.Transfer(ctx, token.Standard, owner.String())
	return err
}

// Balance returns the balance of account on the ledger of tt.
func (s *Simulator) Balance(tt token.Type, account identity.AccountID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.books[tt]; ok {
		return b.balances[account]
	}
	return 0
}

// FaucetBalance returns the faucet's own balance on the ledger of tt.
func (s *Simulator) FaucetBalance(tt token.Type) uint64 {
	return s.Balance(tt, s.account)
}

// Blocks returns a copy of the block log of tt.
func (s *Simulator) Blocks(tt token.Type) []Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[tt]
	if !ok {
		return nil
	}
	return append([]Block(nil), b.blocks...)
}

// Canister returns the ledger canister of tt.
func (s *Simulator) Canister(tt token.Type) identity.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.books[tt]; ok {
		return b.canister
	}
	return identity.Principal{}
}

// FormatE8s renders an e8s amount as a decimal token amount.
func FormatE8s(e8s uint64) string {
	whole, frac := e8s/E8sPerToken, e8s%E8sPerToken
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}
	s := fmt.Sprintf("%d.%08d", whole, frac)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	return s
}
