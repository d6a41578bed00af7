package htlc

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/gconf"
)

// Initializer fulfils the Initializer interface to load the swap
// engine configuration from the genesis file.
type Initializer struct{}

var _ clasp.Initializer = Initializer{}

// FromGenesis will parse the engine configuration and save it in the
// database. The binding policy set here is final, update messages
// cannot change it later.
func (Initializer) FromGenesis(opts clasp.Options, kv clasp.KVStore) error {
	return gconf.InitConfig(kv, opts, "htlc", &Configuration{})
}
