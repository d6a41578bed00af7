package cash

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Set keeps the balance of a single wallet. It is the value stored in
// the wallet bucket, the owning address being the key.
type Set struct {
	Coins coin.Coins `json:"coins"`
}

var _ clasp.Persistent = (*Set)(nil)

// Marshal serializes the set using the package codec.
func (s *Set) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

// Unmarshal replaces the content of the set with the serialized data.
func (s *Set) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, s)
}

// SendMsg moves coins from the source wallet to the destination wallet.
type SendMsg struct {
	Source      clasp.Address `json:"source"`
	Destination clasp.Address `json:"destination"`
	Amount      *coin.Coin    `json:"amount"`
	// Memo is a free form comment, not interpreted by the engine.
	Memo string `json:"memo,omitempty"`
	// Ref can link to an external resource, eg. a transaction on
	// another chain.
	Ref []byte `json:"ref,omitempty"`
}

var _ clasp.Msg = (*SendMsg)(nil)

// Marshal serializes the message using the package codec.
func (m *SendMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

// Unmarshal replaces the content of the message with the serialized data.
func (m *SendMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}
