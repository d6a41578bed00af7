package app

import (
	"github.com/clasp-io/clasp"
)

// ChainInitializers groups the genesis initializers of several
// extensions into a single one.
func ChainInitializers(inits ...clasp.Initializer) clasp.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []clasp.Initializer
}

// FromGenesis runs every initializer in order and stops at the first
// failure.
func (c chainInitializer) FromGenesis(opts clasp.Options, kv clasp.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
