package clasp

import (
	"encoding/json"

	"github.com/clasp-io/clasp/errors"
)

// Options are the application options from the genesis file. Each extension
// can look up its key and parse the raw JSON as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key and parses the JSON
// into the given obj. Missing key is a noop, not an error.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw := o[key]
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot parse %q options: %s", key, err)
	}
	return nil
}

// Initializer implementations are used to initialize extension state from
// the genesis options, exactly once, before the first block.
type Initializer interface {
	FromGenesis(opts Options, kv KVStore) error
}
