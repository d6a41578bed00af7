package token

import (
	"regexp"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/orm"
)

var isTokenName = regexp.MustCompile(`^[A-Za-z0-9 \-_:]{3,32}$`).MatchString

var _ orm.Model = (*Token)(nil)

func (t *Token) Validate() error {
	if !isTokenName(t.Name) {
		return errors.Wrapf(errors.ErrState, "invalid token name %q", t.Name)
	}
	return nil
}

var _ orm.Model = (*Balance)(nil)

func (b *Balance) Validate() error {
	if b.Amount < 0 {
		return errors.Wrap(errors.ErrAmount, "negative balance")
	}
	return coin.NewCoin(b.Amount, b.Ticker).Validate()
}

var _ orm.Model = (*Allowance)(nil)

func (a *Allowance) Validate() error {
	if a.Amount < 0 {
		return errors.Wrap(errors.ErrAmount, "negative allowance")
	}
	return coin.NewCoin(a.Amount, a.Ticker).Validate()
}

// NewTokenBucket returns a bucket for keeping the token registry,
// keyed by ticker.
func NewTokenBucket() orm.ModelBucket {
	return orm.NewModelBucket("tok", &Token{})
}

// NewBalanceBucket returns a bucket for keeping token balances, keyed
// by account address and ticker.
func NewBalanceBucket() orm.ModelBucket {
	return orm.NewModelBucket("tokbal", &Balance{})
}

// NewAllowanceBucket returns a bucket for keeping spend allowances,
// keyed by owner, spender and ticker.
func NewAllowanceBucket() orm.ModelBucket {
	return orm.NewModelBucket("tokall", &Allowance{})
}

// balanceKey is the primary key of a Balance. The address is fixed
// width so the concatenation is unambiguous. Keeping the address first
// allows prefix scans over all holdings of one account.
func balanceKey(addr clasp.Address, ticker string) []byte {
	key := make([]byte, 0, clasp.AddressLength+len(ticker))
	key = append(key, addr...)
	return append(key, ticker...)
}

// allowanceKey is the primary key of an Allowance, owner first so all
// grants of one account share a prefix.
func allowanceKey(owner, spender clasp.Address, ticker string) []byte {
	key := make([]byte, 0, 2*clasp.AddressLength+len(ticker))
	key = append(key, owner...)
	key = append(key, spender...)
	return append(key, ticker...)
}
