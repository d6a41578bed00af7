package bridge

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/gconf"
)

// Initializer fulfils the Initializer interface to load the bridge
// configuration from the genesis file.
type Initializer struct{}

var _ clasp.Initializer = Initializer{}

// FromGenesis will parse the bridge configuration and save it in the
// database.
func (Initializer) FromGenesis(opts clasp.Options, kv clasp.KVStore) error {
	return gconf.InitConfig(kv, opts, "bridge", &Configuration{})
}
