package orm

import (
	amino "github.com/tendermint/go-amino"
)

// cdc serializes every persistent type this package owns. Buckets store
// whatever the model marshals to, so the orm itself only needs a codec
// for its bookkeeping types.
var cdc = amino.NewCodec()

// MultiRef is a sorted set of references to primary keys, stored as the
// value of a non-unique secondary index entry.
type MultiRef struct {
	Refs [][]byte
}

// GetRefs returns the reference set, nil-safe.
func (m *MultiRef) GetRefs() [][]byte {
	if m == nil {
		return nil
	}
	return m.Refs
}

func (m *MultiRef) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *MultiRef) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

// Counter is a persistent integer, mainly useful as a test model.
type Counter struct {
	Count int64
}

func (c *Counter) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

func (c *Counter) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}
