package utils

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// Recovery converts panics escaping the wrapped handler into regular
// errors. Nothing below the decorator can take the process down with
// it; a panicking transaction fails like any other.
type Recovery struct{}

var _ clasp.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx, next clasp.Checker) (res *clasp.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

func (Recovery) Deliver(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx, next clasp.Deliverer) (res *clasp.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
