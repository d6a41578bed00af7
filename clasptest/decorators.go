package clasptest

import "github.com/clasp-io/clasp"

// Decorator implements clasp.Decorator and counts its calls. With
// CheckErr or DeliverErr set the corresponding method short-circuits
// with that error instead of calling the wrapped handler.
type Decorator struct {
	checkCall int
	CheckErr  error

	deliverCall int
	DeliverErr  error
}

var _ clasp.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx, next clasp.Checker) (*clasp.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return &clasp.CheckResult{}, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx, next clasp.Deliverer) (*clasp.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return &clasp.DeliverResult{}, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int { return d.checkCall }

func (d *Decorator) DeliverCallCount() int { return d.deliverCall }

func (d *Decorator) CallCount() int { return d.checkCall + d.deliverCall }

// Decorate binds the decorator and the handler into a single handler.
func Decorate(h clasp.Handler, d clasp.Decorator) clasp.Handler {
	return &decoratedHandler{handler: h, decorator: d}
}

type decoratedHandler struct {
	handler   clasp.Handler
	decorator clasp.Decorator
}

var _ clasp.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	return d.decorator.Check(ctx, db, tx, d.handler)
}

func (d *decoratedHandler) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	return d.decorator.Deliver(ctx, db, tx, d.handler)
}
