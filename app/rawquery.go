package app

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// RawQueryHandler answers queries addressed to the "/" path, interpreting
// the query data as a raw store key. It gives generic clients, like
// ABCIStore, access to any value without knowing the bucket layout.
type RawQueryHandler struct{}

var _ clasp.QueryHandler = RawQueryHandler{}

// RegisterQuery registers the raw key lookup under the root path.
func RegisterQuery(qr clasp.QueryRouter) {
	qr.Register("/", RawQueryHandler{})
}

// Query performs a raw lookup, either for an exact key or for all keys
// sharing a prefix.
func (RawQueryHandler) Query(db clasp.ReadOnlyKVStore, mod string, data []byte) ([]clasp.Model, error) {
	switch mod {
	case clasp.KeyQueryMod:
		value, err := db.Get(data)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		return []clasp.Model{{Key: data, Value: value}}, nil
	case clasp.PrefixQueryMod:
		start, end := prefixRange(data)
		it, err := db.Iterator(start, end)
		if err != nil {
			return nil, err
		}
		defer it.Release()

		var models []clasp.Model
		for {
			k, v, err := it.Next()
			switch {
			case err == nil:
				models = append(models, clasp.Pair(k, v))
			case errors.ErrIteratorDone.Is(err):
				return models, nil
			default:
				return nil, err
			}
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query modifier %q", mod)
	}
}

// prefixRange turns a prefix into (start, end) to create an iterator over
// every key that begins with that prefix.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}

	// copy the prefix and update last byte
	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// carry any overflow into the earlier bytes
	for end[l] == 0 && l > 0 {
		l--
		end[l]++
	}

	// a prefix of only 0xff bytes has no end to its range
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return prefix, end
}
