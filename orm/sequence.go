package orm

import (
	"encoding/binary"

	"github.com/clasp-io/clasp"
)

// Sequence is a monotonic counter persisted in the kvstore. Values
// grow both numerically and under bytes.Compare, so they can serve as
// ordered keys.
type Sequence struct {
	id []byte
}

// NewSequence returns a counter stored under the key
//   _s.<bucket>:<name>
func NewSequence(bucket, name string) Sequence {
	return Sequence{
		id: []byte("_s." + bucket + ":" + name),
	}
}

// NextVal increments the sequence and returns the new state as 8
// bytes.
func (s *Sequence) NextVal(db clasp.KVStore) ([]byte, error) {
	_, bz, err := s.bump(db, 1)
	return bz, err
}

// NextInt increments the sequence and returns the new state as an
// integer.
func (s *Sequence) NextInt(db clasp.KVStore) (int64, error) {
	val, _, err := s.bump(db, 1)
	return val, err
}

// Latest peeks at the most recently issued value without modifying the
// counter. Use NextVal or NextInt to acquire a value that was not
// handed out before.
func (s *Sequence) Latest(db clasp.KVStore) (int64, []byte, error) {
	return s.bump(db, 0)
}

func (s *Sequence) bump(db clasp.KVStore, inc int64) (int64, []byte, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return 0, nil, err
	}
	val := DecodeSequence(raw)
	if inc == 0 {
		return val, raw, nil
	}
	val += inc
	raw = EncodeSequence(val)
	if err := db.Set(s.id, raw); err != nil {
		return 0, nil, err
	}
	return val, raw, nil
}

// DecodeSequence converts the stored big-endian representation to an
// integer. A missing value decodes as zero.
func DecodeSequence(bz []byte) int64 {
	if bz == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(bz))
}

// EncodeSequence renders the value as 8 big-endian bytes.
func EncodeSequence(val int64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(val))
	return bz
}
