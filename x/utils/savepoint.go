package utils

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// Savepoint will isolate all data inside of the call,
// and commit/rollback to the underlying store based on the
// result of the call.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ clasp.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator, but you must
// call OnCheck/OnDeliver so it triggers
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a savepoint that will trigger on check
func (s Savepoint) OnCheck() Savepoint {
	return Savepoint{
		onCheck:   true,
		onDeliver: s.onDeliver,
	}
}

// OnDeliver returns a savepoint that will trigger on deliver
func (s Savepoint) OnDeliver() Savepoint {
	return Savepoint{
		onCheck:   s.onCheck,
		onDeliver: true,
	}
}

// Check will optionally cache, then discard on error
func (s Savepoint) Check(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx, next clasp.Checker) (*clasp.CheckResult, error) {
	if !s.onCheck {
		return next.Check(ctx, store, tx)
	}
	cstore, ok := store.(clasp.CacheableKVStore)
	if !ok {
		return nil, errors.Wrap(errors.ErrDatabase, "need cachable kvstore")
	}
	cache := cstore.CacheWrap()
	res, err := next.Check(ctx, cache, tx)
	if err == nil {
		if err := cache.Write(); err != nil {
			return nil, errors.Wrap(err, "writing savepoint")
		}
	} else {
		cache.Discard()
	}
	return res, err
}

// Deliver will optionally cache, then discard on error
func (s Savepoint) Deliver(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx, next clasp.Deliverer) (*clasp.DeliverResult, error) {
	if !s.onDeliver {
		return next.Deliver(ctx, store, tx)
	}
	cstore, ok := store.(clasp.CacheableKVStore)
	if !ok {
		return nil, errors.Wrap(errors.ErrDatabase, "need cachable kvstore")
	}
	cache := cstore.CacheWrap()
	res, err := next.Deliver(ctx, cache, tx)
	if err == nil {
		if err := cache.Write(); err != nil {
			return nil, errors.Wrap(err, "writing savepoint")
		}
	} else {
		cache.Discard()
	}
	return res, err
}
