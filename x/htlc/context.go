package htlc

import (
	"context"

	"github.com/clasp-io/clasp"
)

type contextKey int

const contextKeyGuard contextKey = iota

// withGuard marks the context as being inside a mutating swap
// operation. The guard covers the operation class, not a single swap.
func withGuard(ctx clasp.Context) clasp.Context {
	return context.WithValue(ctx, contextKeyGuard, true)
}

// guarded returns true when the context already entered a mutating
// swap operation. Asset transfers may run recipient side code, any
// attempt from there to reenter the engine arrives on a guarded
// context and must be rejected.
func guarded(ctx clasp.Context) bool {
	flag, _ := ctx.Value(contextKeyGuard).(bool)
	return flag
}
