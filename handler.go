package clasp

// Checker is the validation half of a Handler. It must not modify any
// state visible outside of its own cache wrap.
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction. State changes
// are persisted upon a successful return.
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Handler is a permanent handler for transactions of a given message type.
//
// Check and Deliver must come to the same conclusion about the validity of
// a transaction. Only Deliver may have lasting effects.
type Handler interface {
	Checker
	Deliverer
}

// Decorator wraps a Handler to provide cross-cutting functionality. It may
// modify the context, short-circuit the call or post-process the results.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface extensions use to register their message
// handlers. The path of the given message determines the route.
type Registry interface {
	// Handle assigns the given handler to handle all messages of the
	// same type as the given message.
	Handle(Msg, Handler)
}
