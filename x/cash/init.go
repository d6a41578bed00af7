package cash

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
)

// GenesisAccount is the genesis file representation of a single wallet.
type GenesisAccount struct {
	Address clasp.Address `json:"address"`
	Coins   coin.Coins    `json:"coins"`
}

// Initializer fulfils the Initializer interface to load accounts from
// the genesis file.
type Initializer struct{}

var _ clasp.Initializer = Initializer{}

// FromGenesis will parse initial account info from the genesis and save
// it in the database.
func (Initializer) FromGenesis(opts clasp.Options, kv clasp.KVStore) error {
	var accounts []GenesisAccount
	if err := opts.ReadOptions("cash", &accounts); err != nil {
		return err
	}
	bucket := NewBucket()
	for i, a := range accounts {
		if err := a.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account #%d address", i)
		}
		wallet, err := WalletWith(a.Address, a.Coins...)
		if err != nil {
			return errors.Wrapf(err, "account #%d wallet", i)
		}
		if err := bucket.Save(kv, wallet); err != nil {
			return errors.Wrapf(err, "account #%d save", i)
		}
	}
	return nil
}
