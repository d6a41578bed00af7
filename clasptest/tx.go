package clasptest

import (
	"encoding/binary"

	"github.com/clasp-io/clasp"
)

// Tx is a test transaction carrying a single message.
type Tx struct {
	// Msg is the message this transaction carries.
	Msg clasp.Msg
	// Err, when set, is returned by every method call.
	Err error
}

var _ clasp.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (clasp.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Unmarshal([]byte) error {
	panic("not implemented")
}

func (tx *Tx) Marshal() ([]byte, error) {
	panic("not implemented")
}

// Msg is a test message with a configurable routing path.
type Msg struct {
	// RoutePath is returned by Path and consumed by the router.
	RoutePath string
	// Serialized is the wire form of this message.
	Serialized []byte
	// Err, when set, is returned by every method call.
	Err error
}

var _ clasp.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}

// SequenceID encodes n the way the orm sequence counter would, as 8
// big-endian bytes.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
