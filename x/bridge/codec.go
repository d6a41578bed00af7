package bridge

import (
	"github.com/clasp-io/clasp"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Configuration is the bridge settings kept via the gconf package.
type Configuration struct {
	// Owner is authorized to change the configuration.
	Owner clasp.Address `json:"owner"`
	// Operator is authorized to mint wrapped units.
	Operator clasp.Address `json:"operator"`
}

// MintMsg credits wrapped units to the destination account. Only the
// bridge operator can issue it, after witnessing a deposit on the
// counter ledger.
type MintMsg struct {
	Ticker      string        `json:"ticker"`
	Destination clasp.Address `json:"destination"`
	Amount      int64         `json:"amount"`
	// Ref links to the deposit transaction on the counter ledger.
	Ref []byte `json:"ref,omitempty"`
}

// BurnMsg destroys wrapped units held by the source account, requesting
// a release on the counter ledger.
type BurnMsg struct {
	Ticker string        `json:"ticker"`
	Source clasp.Address `json:"source"`
	Amount int64         `json:"amount"`
	// Ref names the release destination on the counter ledger.
	Ref []byte `json:"ref,omitempty"`
}

// UpdateConfigurationMsg patches the bridge configuration. Zero valued
// fields of the patch keep their current value.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

func (c *Configuration) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}

func (m *MintMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *MintMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *BurnMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *BurnMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}
