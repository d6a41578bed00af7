package app

import (
	"reflect"

	"github.com/clasp-io/clasp"
)

// Decorators is a middleware chain that still needs a terminal Handler
// before it can process transactions.
type Decorators struct {
	chain []clasp.Decorator
}

// ChainDecorators starts a middleware chain. Adding a terminal Handler
// (usually a Router) with WithHandler turns it into an executable
// stack:
//
//   app.ChainDecorators(
//     utils.NewLogging(),
//     utils.NewRecovery(),
//     utils.NewSavepoint().OnDeliver(),
//   ).WithHandler(
//     app.NewRouter(),
//   )
func ChainDecorators(chain ...clasp.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain appends more decorators to the stack.
func (d Decorators) Chain(chain ...clasp.Decorator) Decorators {
	return Decorators{chain: append(d.chain, dropNil(chain)...)}
}

// dropNil filters out nil decorators, including typed nil pointers,
// so that optional middleware can be passed unconditionally.
func dropNil(ds []clasp.Decorator) []clasp.Decorator {
	res := ds[:0]
	for _, d := range ds {
		if d == nil {
			continue
		}
		if v := reflect.ValueOf(d); v.Kind() == reflect.Ptr && v.IsNil() {
			continue
		}
		res = append(res, d)
	}
	return res
}

// WithHandler terminates the chain and returns a Handler that runs the
// decorators in declaration order before reaching h.
func (d Decorators) WithHandler(h clasp.Handler) clasp.Handler {
	// Wrap from the innermost decorator outwards so the first declared
	// decorator ends up executing first.
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step binds a single decorator to the handler below it.
type step struct {
	d    clasp.Decorator
	next clasp.Handler
}

var _ clasp.Handler = step{}

func (s step) Check(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	return s.d.Check(ctx, store, tx, s.next)
}

func (s step) Deliver(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	return s.d.Deliver(ctx, store, tx, s.next)
}
