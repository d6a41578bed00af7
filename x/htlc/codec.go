package htlc

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Kind selects the ledger the locked asset lives on.
type Kind int32

const (
	// NativeKind locks native currency moved through the cash ledger.
	// This is the zero value, a swap without an explicit kind is
	// native.
	NativeKind Kind = 0
	// TokenKind locks an external asset moved through the token
	// ledger.
	TokenKind Kind = 1
)

// Policy selects how a swap binds its counter party. It is fixed at
// genesis and never changed afterwards. The zero value is invalid in a
// stored configuration so that a configuration patch cannot silently
// reset it.
type Policy int32

const (
	// PolicyAccount binds the counter party by a native address. A
	// secondary index allows claim and refund to resolve the swap
	// from the secret alone.
	PolicyAccount Policy = 1
	// PolicyOpaque binds the counter party by raw bytes plus their
	// hash and records advisory desired asset metadata. Claim and
	// refund must name the swap identifier.
	PolicyOpaque Policy = 2
)

// Gate is a configuration switch over an operation class. The zero
// value is not a valid stored state so that a configuration patch can
// express "keep the current setting" with it.
type Gate int32

const (
	// GateUnset is only meaningful inside a configuration patch and
	// keeps the current setting.
	GateUnset Gate = 0
	// GateOpen lets the operation class through.
	GateOpen Gate = 1
	// GateClosed rejects the operation class until reopened. Locked
	// funds are never trapped, refund has no upper deadline.
	GateClosed Gate = 2
)

// Swap is a single hash time locked commitment. It is stored under the
// commitment identifier and immutable except for the one way Claimed
// transition.
type Swap struct {
	// Kind tells which ledger holds the escrowed funds.
	Kind Kind `json:"kind"`
	// Ticker and Amount describe the locked funds. For native swaps
	// the ticker is the native currency.
	Ticker string `json:"ticker"`
	Amount int64  `json:"amount"`
	// Depositor created the lock and is the only account ever
	// entitled to a refund.
	Depositor clasp.Address `json:"depositor"`
	// Recipient is the account entitled to claim. Set only under the
	// account policy.
	Recipient clasp.Address `json:"recipient,omitempty"`
	// Binding is the counter party identifier in an arbitrary format
	// and RecipientHash its sha256 commitment. Set only under the
	// opaque policy. A claimant qualifies when the hash of its
	// address equals RecipientHash.
	Binding       []byte `json:"binding,omitempty"`
	RecipientHash []byte `json:"recipient_hash,omitempty"`
	// SecretHash is the sha256 commitment to the secret. Both legs of
	// a cross ledger swap must agree on the hash primitive.
	SecretHash []byte `json:"secret_hash"`
	// DesiredTicker and DesiredAmount describe what the depositor
	// expects on the counter ledger. Advisory only, recorded under
	// the opaque policy for relayers and never enforced here.
	DesiredTicker string `json:"desired_ticker,omitempty"`
	DesiredAmount int64  `json:"desired_amount,omitempty"`
	// Expiry is the absolute deadline. Claim is allowed until the
	// deadline inclusive, refund only strictly after it.
	Expiry clasp.UnixTime `json:"expiry"`
	// Claimed is terminal. Once true no operation can touch the swap
	// again.
	Claimed bool `json:"claimed"`
}

// LockMsg creates a new swap. Exactly one of NativeAmount or the
// Token and Amount pair describes the locked funds and exactly one of
// Recipient or Binding names the counter party, matching the
// configured policy.
type LockMsg struct {
	Depositor     clasp.Address  `json:"depositor"`
	SecretHash    []byte         `json:"secret_hash"`
	Recipient     clasp.Address  `json:"recipient,omitempty"`
	Binding       []byte         `json:"binding,omitempty"`
	Expiry        clasp.UnixTime `json:"expiry"`
	NativeAmount  *coin.Coin     `json:"native_amount,omitempty"`
	Token         string         `json:"token,omitempty"`
	Amount        int64          `json:"amount,omitempty"`
	DesiredTicker string         `json:"desired_ticker,omitempty"`
	DesiredAmount int64          `json:"desired_amount,omitempty"`
}

// ClaimMsg releases a swap to the claimant in exchange for the secret.
// SwapID is optional under the account policy where the swap can be
// resolved from the secret and the calling account.
type ClaimMsg struct {
	SwapID []byte `json:"swap_id,omitempty"`
	Secret []byte `json:"secret"`
}

// RefundMsg returns an expired swap to the depositor. SwapID is
// optional under the account policy where the swap can be resolved
// from the secret hash and the calling account.
type RefundMsg struct {
	SwapID     []byte `json:"swap_id,omitempty"`
	SecretHash []byte `json:"secret_hash,omitempty"`
}

// Configuration is the engine configuration kept by the gconf
// package.
type Configuration struct {
	// Owner is authorized to change this configuration.
	Owner clasp.Address `json:"owner"`
	// NativeTicker is the currency of the cash ledger. Token swaps
	// must not use it.
	NativeTicker string `json:"native_ticker"`
	// Policy is the counter party binding scheme. Immutable after
	// genesis.
	Policy Policy `json:"policy"`
	// ClaimGate and RefundGate can halt the claim or refund paths in
	// an emergency. Locks are never gated.
	ClaimGate  Gate `json:"claim_gate"`
	RefundGate Gate `json:"refund_gate"`
}

// UpdateConfigurationMsg patches the configuration. Zero valued patch
// fields keep their current setting. The policy cannot be patched.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

// Event is one entry of the append-only swap log. Exactly one payload
// is set. Entries are keyed by a monotonic sequence so a relayer can
// poll the range it has not seen yet.
type Event struct {
	Height   int64          `json:"height"`
	Time     clasp.UnixTime `json:"time"`
	Locked   *LockedEvent   `json:"locked,omitempty"`
	Claimed  *ClaimedEvent  `json:"claimed,omitempty"`
	Refunded *RefundedEvent `json:"refunded,omitempty"`
}

// LockedEvent carries every field a relayer needs to reconstruct the
// commitment and act on the counter ledger.
type LockedEvent struct {
	SwapID        []byte         `json:"swap_id"`
	SecretHash    []byte         `json:"secret_hash"`
	Kind          Kind           `json:"kind"`
	Ticker        string         `json:"ticker"`
	Amount        int64          `json:"amount"`
	Depositor     clasp.Address  `json:"depositor"`
	Recipient     clasp.Address  `json:"recipient,omitempty"`
	Binding       []byte         `json:"binding,omitempty"`
	DesiredTicker string         `json:"desired_ticker,omitempty"`
	DesiredAmount int64          `json:"desired_amount,omitempty"`
	Expiry        clasp.UnixTime `json:"expiry"`
}

// ClaimedEvent discloses the secret. This is the mechanism that makes
// it public for the mirrored claim on the counter ledger.
type ClaimedEvent struct {
	SwapID []byte `json:"swap_id"`
	Secret []byte `json:"secret"`
}

// RefundedEvent records that the depositor recovered the funds.
type RefundedEvent struct {
	SwapID []byte `json:"swap_id"`
}

func (s *Swap) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *Swap) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, s)
}

func (e *Event) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(e)
}

func (e *Event) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, e)
}

func (c *Configuration) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}

func (m *LockMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *LockMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *ClaimMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *ClaimMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *RefundMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *RefundMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

// MarshalJSON renders the policy in its text form.
func (p Policy) MarshalJSON() ([]byte, error) {
	switch p {
	case PolicyAccount:
		return []byte(`"account"`), nil
	case PolicyOpaque:
		return []byte(`"opaque"`), nil
	}
	return nil, errors.Wrapf(errors.ErrState, "unknown policy %d", p)
}

// UnmarshalJSON loads the policy from its text form.
func (p *Policy) UnmarshalJSON(raw []byte) error {
	switch string(raw) {
	case `"account"`:
		*p = PolicyAccount
	case `"opaque"`:
		*p = PolicyOpaque
	default:
		return errors.Wrapf(errors.ErrInput, "unknown policy %s", raw)
	}
	return nil
}

// MarshalJSON renders the gate in its text form.
func (g Gate) MarshalJSON() ([]byte, error) {
	switch g {
	case GateUnset:
		return []byte(`""`), nil
	case GateOpen:
		return []byte(`"open"`), nil
	case GateClosed:
		return []byte(`"closed"`), nil
	}
	return nil, errors.Wrapf(errors.ErrState, "unknown gate %d", g)
}

// UnmarshalJSON loads the gate from its text form.
func (g *Gate) UnmarshalJSON(raw []byte) error {
	switch string(raw) {
	case `""`, `null`:
		*g = GateUnset
	case `"open"`:
		*g = GateOpen
	case `"closed"`:
		*g = GateClosed
	default:
		return errors.Wrapf(errors.ErrInput, "unknown gate %s", raw)
	}
	return nil
}
