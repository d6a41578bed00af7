package orm

import (
	"bytes"
	"encoding/hex"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// queryRangeLimit is the maximum number of results a single range query
// returns. Clients must paginate with an offset to read more.
const queryRangeLimit = 50

// queryPrefix returns all models with the given key prefix.
func queryPrefix(db clasp.ReadOnlyKVStore, prefix []byte) ([]clasp.Model, error) {
	start, end := prefixRange(prefix)
	itr, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return consumeIterator(itr)
}

// prefixRange turns a prefix into (start, end) to create an iterator over
// every key that begins with that prefix.
func prefixRange(prefix []byte) ([]byte, []byte) {
	// special case: no prefix is whole range
	if len(prefix) == 0 {
		return nil, nil
	}

	// copy the prefix and update last byte
	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// wait, what if that overflowed the byte??
	for end[l] == 0 && l > 0 {
		l--
		end[l]++
	}

	// okay, funny guy, you gave us FFF, no end to this range...
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return prefix, end
}

// consumeIterator reads all remaining data into memory and releases the
// iterator. Use only with iterators of bound result size, for example
// wrapped in a paginatedIterator.
func consumeIterator(it clasp.Iterator) ([]clasp.Model, error) {
	defer it.Release()

	var out []clasp.Model
	for {
		k, v, err := it.Next()
		switch {
		case err == nil:
			out = append(out, clasp.Pair(k, v))
		case errors.ErrIteratorDone.Is(err):
			return out, nil
		default:
			return nil, err
		}
	}
}

// consumeIteratorKeys returns a list of all keys that given iterator
// returns. This function should be used only for iterators when the
// result size is known to be small as all results are kept in memory.
// This function releases the iterator.
func consumeIteratorKeys(it clasp.Iterator) ([][]byte, error) {
	defer it.Release()

	var keys [][]byte
	for {
		switch k, _, err := it.Next(); {
		case err == nil:
			keys = append(keys, k)
		case errors.ErrIteratorDone.Is(err):
			return keys, nil
		default:
			return keys, err
		}
	}
}

// paginatedIterator wraps an iterator and terminates it after a fixed
// number of results.
type paginatedIterator struct {
	it        clasp.Iterator
	remaining int
}

var _ clasp.Iterator = (*paginatedIterator)(nil)

func (p *paginatedIterator) Next() ([]byte, []byte, error) {
	if p.remaining <= 0 {
		return nil, nil, errors.ErrIteratorDone
	}
	p.remaining--
	return p.it.Next()
}

func (p *paginatedIterator) Release() {
	p.it.Release()
}

// parseQueryRange parses range query data and returns its parts. Start
// and/or end can be nil. Start, end and offset must be hex encoded.
// Format is <start>[:<offset>[:<end>]] for example:
//   <start>
//   <start>:<offset>
//   <start>:<offset>:
//   <start>:<offset>:<end>
//   <start>::<end>
//   ::<end>
func parseQueryRange(raw []byte) (start, offset, end []byte, err error) {
	if len(raw) == 0 {
		return nil, nil, nil, nil
	}

	var decErr error // global decoding error
	decodeHex := func(b []byte) []byte {
		if len(b) == 0 {
			return nil
		}
		dst := make([]byte, hex.DecodedLen(len(b)))
		if _, err := hex.Decode(dst, b); err != nil {
			decErr = errors.Wrap(errors.ErrInput, "not hex data")
		}
		return dst
	}

	switch c := bytes.SplitN(raw, []byte(":"), 4); len(c) {
	case 1:
		return decodeHex(raw), nil, nil, decErr
	case 2:
		return decodeHex(c[0]), decodeHex(c[1]), nil, decErr
	case 3:
		return decodeHex(c[0]), decodeHex(c[1]), decodeHex(c[2]), decErr
	default:
		return nil, nil, nil, errors.Wrap(errors.ErrInput, "invalid format")
	}
}
