package token

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/orm"
	"github.com/clasp-io/clasp/x"
)

const (
	createTokenCost int64 = 100
	transferCost    int64 = 100
	approveCost     int64 = 50
)

// RegisterRoutes will instantiate and register all handlers in this
// package. The issuer, when not nil, is the only address allowed to
// register new tokens.
func RegisterRoutes(r clasp.Registry, auth x.Authenticator, issuer clasp.Address, control Controller) {
	r.Handle(&CreateTokenMsg{}, newCreateTokenHandler(auth, issuer, control))
	r.Handle(&TransferMsg{}, newTransferHandler(auth, control))
	r.Handle(&ApproveMsg{}, newApproveHandler(auth))
}

// RegisterQuery will register all token buckets for queries.
func RegisterQuery(qr clasp.QueryRouter) {
	NewTokenBucket().Register("tokens", qr)
	NewBalanceBucket().Register("tokenbalances", qr)
	NewAllowanceBucket().Register("allowances", qr)
}

type createTokenHandler struct {
	auth    x.Authenticator
	issuer  clasp.Address
	bucket  orm.ModelBucket
	control Controller
}

func newCreateTokenHandler(auth x.Authenticator, issuer clasp.Address, control Controller) *createTokenHandler {
	return &createTokenHandler{
		auth:    auth,
		issuer:  issuer,
		bucket:  NewTokenBucket(),
		control: control,
	}
}

func (h *createTokenHandler) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &clasp.CheckResult{GasAllocated: createTokenCost}, nil
}

func (h *createTokenHandler) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.bucket.Put(db, []byte(msg.Ticker), &Token{Name: msg.Name}); err != nil {
		return nil, errors.Wrap(err, "cannot store token")
	}
	if msg.InitialSupply > 0 {
		if err := h.control.Mint(db, msg.Ticker, msg.Owner, msg.InitialSupply); err != nil {
			return nil, errors.Wrap(err, "cannot mint initial supply")
		}
	}
	return &clasp.DeliverResult{}, nil
}

func (h *createTokenHandler) validate(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*CreateTokenMsg, error) {
	var msg CreateTokenMsg
	if err := clasp.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}

	// Ensure we have permission if the issuer is provided.
	if h.issuer != nil && !h.auth.HasAddress(ctx, h.issuer) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "tokens can be issued only by %s", h.issuer)
	}

	// A token can be registered only once and is never updated.
	switch err := h.bucket.Has(db, []byte(msg.Ticker)); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "ticker %s", msg.Ticker)
	case errors.ErrNotFound.Is(err):
		// All good.
	default:
		return nil, err
	}

	return &msg, nil
}

type transferHandler struct {
	auth    x.Authenticator
	control Controller
}

func newTransferHandler(auth x.Authenticator, control Controller) *transferHandler {
	return &transferHandler{
		auth:    auth,
		control: control,
	}
}

func (h *transferHandler) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &clasp.CheckResult{GasAllocated: transferCost}, nil
}

func (h *transferHandler) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Push(ctx, db, msg.Ticker, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &clasp.DeliverResult{}, nil
}

func (h *transferHandler) validate(ctx clasp.Context, tx clasp.Tx) (*TransferMsg, error) {
	var msg TransferMsg
	if err := clasp.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.ErrUnauthorized
	}
	return &msg, nil
}

type approveHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

func newApproveHandler(auth x.Authenticator) *approveHandler {
	return &approveHandler{
		auth:   auth,
		bucket: NewAllowanceBucket(),
	}
}

func (h *approveHandler) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &clasp.CheckResult{GasAllocated: approveCost}, nil
}

func (h *approveHandler) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}

	key := allowanceKey(msg.Owner, msg.Spender, msg.Ticker)
	if msg.Amount == 0 {
		// Clearing an allowance that was never granted is a noop.
		switch err := h.bucket.Delete(db, key); {
		case err == nil, errors.ErrNotFound.Is(err):
		default:
			return nil, errors.Wrap(err, "cannot clear allowance")
		}
		return &clasp.DeliverResult{}, nil
	}

	a := Allowance{Ticker: msg.Ticker, Amount: msg.Amount}
	if _, err := h.bucket.Put(db, key, &a); err != nil {
		return nil, errors.Wrap(err, "cannot store allowance")
	}
	return &clasp.DeliverResult{}, nil
}

func (h *approveHandler) validate(ctx clasp.Context, tx clasp.Tx) (*ApproveMsg, error) {
	var msg ApproveMsg
	if err := clasp.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.ErrUnauthorized
	}
	return &msg, nil
}
