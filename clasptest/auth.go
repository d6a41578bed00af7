package clasptest

import (
	"context"
	"fmt"

	"github.com/clasp-io/clasp"
)

// Auth authenticates a fixed set of conditions, no matter the context.
// Populate Signer for the common single caller case or Signers for
// several; when both are set all of them are considered.
type Auth struct {
	Signer  clasp.Condition
	Signers []clasp.Condition
}

func (a *Auth) all() []clasp.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	return append(a.Signers, a.Signer)
}

func (a *Auth) GetConditions(clasp.Context) []clasp.Condition {
	return a.all()
}

func (a *Auth) HasAddress(_ clasp.Context, addr clasp.Address) bool {
	for _, c := range a.all() {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth authenticates whatever conditions were stored on the context
// under Key, mirroring how a transport decorator hands the caller down
// to the handlers.
type CtxAuth struct {
	Key string
}

func (a *CtxAuth) SetConditions(ctx clasp.Context, conds ...clasp.Condition) clasp.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx clasp.Context) []clasp.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]clasp.Condition)
	if !ok {
		panic(fmt.Sprintf("conditions stored on the context as %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx clasp.Context, addr clasp.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
