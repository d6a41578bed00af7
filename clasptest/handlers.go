package clasptest

import "github.com/clasp-io/clasp"

// Handler implements clasp.Handler and counts the calls. Configure the
// result attributes to control what each method call returns.
type Handler struct {
	checkCall   int
	CheckResult clasp.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult clasp.DeliverResult
	DeliverErr    error
}

var _ clasp.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	h.checkCall++
	return &h.CheckResult, h.CheckErr
}

func (h *Handler) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	h.deliverCall++
	return &h.DeliverResult, h.DeliverErr
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
