package bridge

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/gconf"
	"github.com/clasp-io/clasp/x"
	"github.com/clasp-io/clasp/x/token"
)

const (
	mintCost int64 = 100
	burnCost int64 = 100
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r clasp.Registry, auth x.Authenticator, control token.Controller) {
	r.Handle(&MintMsg{}, &mintHandler{auth: auth, control: control})
	r.Handle(&BurnMsg{}, &burnHandler{auth: auth, control: control})
	r.Handle(&UpdateConfigurationMsg{},
		gconf.NewUpdateConfigurationHandler("bridge", &Configuration{}, auth, nil))
}

// loadConf returns the bridge configuration from the database.
func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "bridge", &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}

type mintHandler struct {
	auth    x.Authenticator
	control token.Controller
}

func (h *mintHandler) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &clasp.CheckResult{GasAllocated: mintCost}, nil
}

func (h *mintHandler) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Mint(db, msg.Ticker, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &clasp.DeliverResult{}, nil
}

func (h *mintHandler) validate(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*MintMsg, error) {
	var msg MintMsg
	if err := clasp.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Operator) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the operator can mint")
	}
	return &msg, nil
}

type burnHandler struct {
	auth    x.Authenticator
	control token.Controller
}

func (h *burnHandler) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &clasp.CheckResult{GasAllocated: burnCost}, nil
}

func (h *burnHandler) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Burn(db, msg.Ticker, msg.Source, msg.Amount); err != nil {
		return nil, err
	}
	return &clasp.DeliverResult{}, nil
}

func (h *burnHandler) validate(ctx clasp.Context, tx clasp.Tx) (*BurnMsg, error) {
	var msg BurnMsg
	if err := clasp.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.ErrUnauthorized
	}
	return &msg, nil
}
