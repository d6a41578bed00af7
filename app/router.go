package app

import (
	"fmt"
	"regexp"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// isPath defines a valid message path
var isPath = regexp.MustCompile(`^[a-z0-9_/]{4,32}$`).MatchString

// Router directs messages to the handler registered for their path.
type Router struct {
	handlers map[string]clasp.Handler
}

var _ clasp.Registry = (*Router)(nil)
var _ clasp.Handler = (*Router)(nil)

// NewRouter initializes a router with no routes.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]clasp.Handler),
	}
}

// Handle assigns given handler to handle processing of every message of the
// same type as the given one. Requiring a message instance instead of a raw
// path ensures the route matches what the handler will be fed.
// Handle panics on a path conflict or an invalid path.
func (r *Router) Handle(m clasp.Msg, h clasp.Handler) {
	path := m.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path %q", path))
	}
	if _, ok := r.handlers[path]; ok {
		panic(fmt.Sprintf("double registration of a handler for path %q", path))
	}
	r.handlers[path] = h
}

// Handler returns the registered Handler for this path. If none is found, a
// handler that always fails with a not found error is returned instead.
func (r *Router) Handler(path string) clasp.Handler {
	h, ok := r.handlers[path]
	if !ok {
		return notFoundHandler(path)
	}
	return h
}

// Check dispatches to the proper handler based on the message path.
func (r *Router) Check(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.Handler(msg.Path()).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on the message path.
func (r *Router) Deliver(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.Handler(msg.Path()).Deliver(ctx, store, tx)
}

// notFoundHandler always returns ErrNotFound, regardless of the arguments
// provided.
type notFoundHandler string

var _ clasp.Handler = notFoundHandler("")

func (path notFoundHandler) Check(clasp.Context, clasp.KVStore, clasp.Tx) (*clasp.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}

func (path notFoundHandler) Deliver(clasp.Context, clasp.KVStore, clasp.Tx) (*clasp.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}
