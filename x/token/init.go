package token

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
)

// Initializer fulfils the Initializer interface to load the token
// registry and initial balances from the genesis file.
type Initializer struct{}

var _ clasp.Initializer = Initializer{}

// FromGenesis will parse the token declarations from the genesis and
// save them in the database.
func (Initializer) FromGenesis(opts clasp.Options, kv clasp.KVStore) error {
	var conf struct {
		Tokens []struct {
			Ticker string `json:"ticker"`
			Name   string `json:"name"`
		} `json:"tokens"`
		Balances []struct {
			Address clasp.Address `json:"address"`
			Ticker  string        `json:"ticker"`
			Amount  int64         `json:"amount"`
		} `json:"balances"`
	}
	if err := opts.ReadOptions("token", &conf); err != nil {
		return err
	}

	tokens := NewTokenBucket()
	for _, t := range conf.Tokens {
		if !coin.IsCC(t.Ticker) {
			return errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", t.Ticker)
		}
		if _, err := tokens.Put(kv, []byte(t.Ticker), &Token{Name: t.Name}); err != nil {
			return errors.Wrapf(err, "token %q", t.Ticker)
		}
	}

	balances := NewBalanceBucket()
	for i, b := range conf.Balances {
		if err := b.Address.Validate(); err != nil {
			return errors.Wrapf(err, "balance #%d address", i)
		}
		if err := tokens.Has(kv, []byte(b.Ticker)); err != nil {
			return errors.Wrapf(err, "balance #%d token %q", i, b.Ticker)
		}
		key := balanceKey(b.Address, b.Ticker)
		bal := Balance{Ticker: b.Ticker, Amount: b.Amount}
		if _, err := balances.Put(kv, key, &bal); err != nil {
			return errors.Wrapf(err, "balance #%d save", i)
		}
	}
	return nil
}
