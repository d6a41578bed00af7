package cash

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
)

// Controller is the functionality other extensions need from the cash
// ledger. BaseController should work plenty fine, but the interface
// keeps them decoupled from the storage details.
type Controller interface {
	// MoveCoins transfers the amount from the source to the
	// destination wallet, creating the destination if needed.
	MoveCoins(db clasp.KVStore, src, dest clasp.Address, amount coin.Coin) error

	// Balance returns the coins held by the given account.
	Balance(db clasp.ReadOnlyKVStore, addr clasp.Address) (coin.Coins, error)
}

// BaseController implements Controller on top of a wallet bucket.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the amount of funds stored in the account.
func (c BaseController) Balance(db clasp.ReadOnlyKVStore, addr clasp.Address) (coin.Coins, error) {
	wallet, err := c.bucket.Get(db, addr)
	if err != nil {
		return nil, errors.Wrap(err, "cannot acquire wallet")
	}
	if wallet == nil {
		return nil, errors.Wrapf(errors.ErrEmpty, "no wallet for %s", addr)
	}
	return wallet.Coins(), nil
}

// MoveCoins transfers the given amount from source to destination. The
// transfer fails if the source does not exist or holds insufficient
// funds. Partially applied writes are rolled back by the transaction
// savepoint, so a failed move never changes any balance.
func (c BaseController) MoveCoins(db clasp.KVStore, src, dest clasp.Address, amount coin.Coin) error {
	if amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "zero value")
	}
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount: %v", amount)
	}

	sender, err := c.bucket.Get(db, src)
	if err != nil {
		return errors.Wrap(err, "cannot acquire wallet")
	}
	if sender == nil {
		return errors.Wrapf(errors.ErrEmpty, "account %s", src)
	}
	if !sender.Coins().Contains(amount) {
		return errors.Wrap(errors.ErrAmount, "funds")
	}

	if err := sender.Subtract(amount); err != nil {
		return err
	}
	if err := c.bucket.Save(db, sender); err != nil {
		return err
	}

	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return errors.Wrap(err, "cannot acquire wallet")
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.bucket.Save(db, recipient)
}
