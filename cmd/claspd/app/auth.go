package app

import (
	"context"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/x"
)

type contextKey int // local to this package

const (
	contextKeyCaller contextKey = iota
)

// withCaller is private, only the caller decorator can grant
// permissions.
func withCaller(ctx clasp.Context, caller clasp.Condition) clasp.Context {
	return context.WithValue(ctx, contextKeyCaller, caller)
}

// Authenticate implements x.Authenticator against the caller condition
// declared by the transaction envelope.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the condition of the caller, if any.
func (Authenticate) GetConditions(ctx clasp.Context) []clasp.Condition {
	val, _ := ctx.Value(contextKeyCaller).(clasp.Condition)
	if val == nil {
		return nil
	}
	return []clasp.Condition{val}
}

// HasAddress returns true if the caller condition resolves to the given
// address.
func (a Authenticate) HasAddress(ctx clasp.Context, addr clasp.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

// CallerTx is implemented by transactions that declare the condition
// they were submitted under.
type CallerTx interface {
	GetCaller() clasp.Condition
}

// CallerDecorator turns the caller declared by the transaction envelope
// into a permission on the context. The transport in front of the
// engine is responsible for verifying that the submitter is entitled to
// the condition, this is a deployment where the node trusts its
// operator channel rather than verifying signatures itself.
type CallerDecorator struct{}

var _ clasp.Decorator = CallerDecorator{}

// NewCallerDecorator creates a CallerDecorator.
func NewCallerDecorator() CallerDecorator {
	return CallerDecorator{}
}

// Check implements Decorator.
func (d CallerDecorator) Check(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx, next clasp.Checker) (*clasp.CheckResult, error) {
	ctx, err := d.authenticate(ctx, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, store, tx)
}

// Deliver implements Decorator.
func (d CallerDecorator) Deliver(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx, next clasp.Deliverer) (*clasp.DeliverResult, error) {
	ctx, err := d.authenticate(ctx, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

func (d CallerDecorator) authenticate(ctx clasp.Context, tx clasp.Tx) (clasp.Context, error) {
	ct, ok := tx.(CallerTx)
	if !ok {
		return ctx, nil
	}
	caller := ct.GetCaller()
	if caller == nil {
		// An anonymous transaction is still routed, handlers that
		// require authorization reject it themselves.
		return ctx, nil
	}
	if err := caller.Validate(); err != nil {
		return ctx, errors.Wrap(err, "caller")
	}
	return withCaller(ctx, caller), nil
}
