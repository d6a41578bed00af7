package token

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/orm"
)

// Observer is notified about tokens arriving at the address it is
// registered for. It runs inside the transfer and its error aborts the
// whole operation. Observers model recipient side code and must be
// treated as untrusted by the caller.
type Observer interface {
	OnTokenMoved(ctx clasp.Context, db clasp.KVStore, ticker string, src, dest clasp.Address, amount int64) error
}

// Controller is the functionality other extensions need from the token
// ledger.
type Controller interface {
	// Push moves tokens from src to dest. Authorizing src is the
	// caller's responsibility.
	Push(ctx clasp.Context, db clasp.KVStore, ticker string, src, dest clasp.Address, amount int64) error

	// Pull moves tokens from the owner to dest, consuming the
	// allowance granted to the spender. It fails without a
	// sufficient allowance or balance.
	Pull(ctx clasp.Context, db clasp.KVStore, ticker string, owner, spender, dest clasp.Address, amount int64) error

	// Mint creates new units of a registered token and credits them
	// to the destination account.
	Mint(db clasp.KVStore, ticker string, dest clasp.Address, amount int64) error

	// Burn destroys units held by the source account.
	Burn(db clasp.KVStore, ticker string, src clasp.Address, amount int64) error

	// Balance returns the amount of the token held by the account.
	// An account that never received the token holds zero.
	Balance(db clasp.ReadOnlyKVStore, addr clasp.Address, ticker string) (int64, error)

	// Allowance returns the amount the spender may pull from the
	// owner account.
	Allowance(db clasp.ReadOnlyKVStore, owner, spender clasp.Address, ticker string) (int64, error)
}

// BaseController implements Controller on top of the token buckets.
type BaseController struct {
	tokens     orm.ModelBucket
	balances   orm.ModelBucket
	allowances orm.ModelBucket
	observers  map[string]Observer
}

var _ Controller = (*BaseController)(nil)

// NewController returns a controller with no observers registered.
func NewController() *BaseController {
	return &BaseController{
		tokens:     NewTokenBucket(),
		balances:   NewBalanceBucket(),
		allowances: NewAllowanceBucket(),
		observers:  make(map[string]Observer),
	}
}

// RegisterObserver attaches an observer to a destination address. Only
// one observer per address is supported and registration happens during
// application assembly, not at runtime.
func (c *BaseController) RegisterObserver(addr clasp.Address, obs Observer) {
	c.observers[string(addr)] = obs
}

func (c *BaseController) Balance(db clasp.ReadOnlyKVStore, addr clasp.Address, ticker string) (int64, error) {
	var b Balance
	switch err := c.balances.One(db, balanceKey(addr, ticker), &b); {
	case err == nil:
		return b.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, errors.Wrap(err, "cannot load balance")
	}
}

func (c *BaseController) Allowance(db clasp.ReadOnlyKVStore, owner, spender clasp.Address, ticker string) (int64, error) {
	var a Allowance
	switch err := c.allowances.One(db, allowanceKey(owner, spender, ticker), &a); {
	case err == nil:
		return a.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, errors.Wrap(err, "cannot load allowance")
	}
}

func (c *BaseController) Push(ctx clasp.Context, db clasp.KVStore, ticker string, src, dest clasp.Address, amount int64) error {
	return c.move(ctx, db, ticker, src, dest, amount)
}

func (c *BaseController) Pull(ctx clasp.Context, db clasp.KVStore, ticker string, owner, spender, dest clasp.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "must be positive")
	}

	var a Allowance
	key := allowanceKey(owner, spender, ticker)
	switch err := c.allowances.One(db, key, &a); {
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(errors.ErrUnauthorized, "no allowance for %s", spender)
	case err != nil:
		return errors.Wrap(err, "cannot load allowance")
	}
	if a.Amount < amount {
		return errors.Wrap(errors.ErrAmount, "allowance exceeded")
	}

	a.Amount -= amount
	if a.Amount == 0 {
		if err := c.allowances.Delete(db, key); err != nil {
			return errors.Wrap(err, "cannot clear allowance")
		}
	} else {
		if _, err := c.allowances.Put(db, key, &a); err != nil {
			return errors.Wrap(err, "cannot update allowance")
		}
	}

	return c.move(ctx, db, ticker, owner, dest, amount)
}

func (c *BaseController) Mint(db clasp.KVStore, ticker string, dest clasp.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "must be positive")
	}
	if err := c.tokens.Has(db, []byte(ticker)); err != nil {
		return errors.Wrapf(err, "token %q", ticker)
	}
	return c.adjust(db, ticker, dest, amount)
}

func (c *BaseController) Burn(db clasp.KVStore, ticker string, src clasp.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "must be positive")
	}
	return c.adjust(db, ticker, src, -amount)
}

// move transfers tokens between two accounts and notifies the observer
// registered for the destination, if any. A failing observer aborts the
// transfer, the caller's savepoint discards the partial writes.
func (c *BaseController) move(ctx clasp.Context, db clasp.KVStore, ticker string, src, dest clasp.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "must be positive")
	}
	if err := c.adjust(db, ticker, src, -amount); err != nil {
		return err
	}
	if err := c.adjust(db, ticker, dest, amount); err != nil {
		return err
	}
	if obs, ok := c.observers[string(dest)]; ok {
		if err := obs.OnTokenMoved(ctx, db, ticker, src, dest, amount); err != nil {
			return errors.Wrap(err, "rejected by the recipient")
		}
	}
	return nil
}

// adjust changes the balance of a single account by delta. The record
// is removed when the balance drops to zero, so an empty account and
// an account that never received the token look the same.
func (c *BaseController) adjust(db clasp.KVStore, ticker string, addr clasp.Address, delta int64) error {
	key := balanceKey(addr, ticker)

	b := Balance{Ticker: ticker}
	switch err := c.balances.One(db, key, &b); {
	case errors.ErrNotFound.Is(err):
		// start from a zero balance
	case err != nil:
		return errors.Wrap(err, "cannot load balance")
	}

	next := b.Amount + delta
	if next < 0 {
		return errors.Wrap(errors.ErrAmount, "insufficient funds")
	}
	if delta > 0 && next < b.Amount {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}

	if next == 0 {
		return c.balances.Delete(db, key)
	}
	b.Amount = next
	_, err := c.balances.Put(db, key, &b)
	return err
}
