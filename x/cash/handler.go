package cash

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/x"
)

// sendTxCost is the gas reported for processing a coin transfer.
const sendTxCost int64 = 100

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r clasp.Registry, auth x.Authenticator, control Controller) {
	r.Handle(&SendMsg{}, NewSendHandler(auth, control))
}

// RegisterQuery will register the wallet bucket as "/wallets".
func RegisterQuery(qr clasp.QueryRouter) {
	NewBucket().Register("wallets", qr)
}

// SendHandler will handle sending coins.
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ clasp.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg.
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check verifies the transfer is authorized by the source account.
func (h SendHandler) Check(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	var msg SendMsg
	if err := clasp.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.ErrUnauthorized
	}
	return &clasp.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the amount from the source to the destination wallet,
// if the source has sufficient funds.
func (h SendHandler) Deliver(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	var msg SendMsg
	if err := clasp.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.ErrUnauthorized
	}
	if err := h.control.MoveCoins(store, msg.Source, msg.Destination, *msg.Amount); err != nil {
		return nil, err
	}
	return &clasp.DeliverResult{}, nil
}
