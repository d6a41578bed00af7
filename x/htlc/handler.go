package htlc

import (
	"bytes"
	"crypto/subtle"
	"fmt"

	"github.com/tendermint/tendermint/libs/common"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/gconf"
	"github.com/clasp-io/clasp/orm"
	"github.com/clasp-io/clasp/x"
	"github.com/clasp-io/clasp/x/cash"
	"github.com/clasp-io/clasp/x/token"
)

const (
	// pay the swap cost up front
	lockCost   int64 = 300
	claimCost  int64 = 0
	refundCost int64 = 0
)

// RegisterRoutes will instantiate and register all handlers in this
// package. The engine owns no funds itself, it moves them between the
// depositor, the per swap escrow account and the claimant through the
// two ledger controllers.
func RegisterRoutes(r clasp.Registry, auth x.Authenticator, bank cash.Controller, tokens token.Controller) {
	swaps := NewSwapBucket()
	events := NewEventBucket()
	mv := mover{bank: bank, tokens: tokens}

	r.Handle(&LockMsg{}, &lockHandler{auth: auth, bucket: swaps, events: events, mover: mv})
	r.Handle(&ClaimMsg{}, &claimHandler{auth: auth, bucket: swaps, events: events, mover: mv})
	r.Handle(&RefundMsg{}, &refundHandler{auth: auth, bucket: swaps, events: events, mover: mv})
	r.Handle(&UpdateConfigurationMsg{},
		gconf.NewUpdateConfigurationHandler("htlc", &Configuration{}, auth, nil))
}

// RegisterQuery will register the swap bucket as "/swaps", the event
// log as "/swapevents" and the identifier preview as "/swapid".
func RegisterQuery(qr clasp.QueryRouter) {
	NewSwapBucket().Register("swaps", qr)
	NewEventBucket().Register("swapevents", qr)
	qr.Register("/swapid", idQuery{})
}

// swapTag indexes a delivery by the swap it touched.
func swapTag(swapID []byte) common.KVPair {
	return clasp.Tag("swap-id", fmt.Sprintf("%X", swapID))
}

// mover executes the engine's asset effects on the two ledgers.
type mover struct {
	bank   cash.Controller
	tokens token.Controller
}

// escrow moves the locked funds from the depositor to the swap
// account. External assets are pulled against the allowance the
// depositor granted to the module address.
func (m mover) escrow(ctx clasp.Context, db clasp.KVStore, swapID []byte, swap *Swap) error {
	dest := SwapAddr(swapID)
	switch swap.Kind {
	case NativeKind:
		return m.bank.MoveCoins(db, swap.Depositor, dest, coin.NewCoin(swap.Amount, swap.Ticker))
	case TokenKind:
		return m.tokens.Pull(ctx, db, swap.Ticker, swap.Depositor, ModuleAddr(), dest, swap.Amount)
	}
	return errors.Wrapf(errors.ErrState, "unknown kind %d", swap.Kind)
}

// payOut releases exactly the recorded amount from the swap account.
// Anything sent there beyond the locked funds is outside the engine's
// custody and stays where it is.
func (m mover) payOut(ctx clasp.Context, db clasp.KVStore, swapID []byte, swap *Swap, dest clasp.Address) error {
	src := SwapAddr(swapID)
	switch swap.Kind {
	case NativeKind:
		return m.bank.MoveCoins(db, src, dest, coin.NewCoin(swap.Amount, swap.Ticker))
	case TokenKind:
		return m.tokens.Push(ctx, db, swap.Ticker, src, dest, swap.Amount)
	}
	return errors.Wrapf(errors.ErrState, "unknown kind %d", swap.Kind)
}

// loadSwap returns the swap stored under the identifier.
func loadSwap(bucket orm.ModelBucket, db clasp.ReadOnlyKVStore, swapID []byte) (*Swap, error) {
	var swap Swap
	if err := bucket.One(db, swapID, &swap); err != nil {
		return nil, errors.Wrapf(err, "swap %X", swapID)
	}
	return &swap, nil
}

// claimantOf resolves the account entitled to claim the swap among
// the authenticated callers.
func claimantOf(ctx clasp.Context, auth x.Authenticator, swap *Swap) (clasp.Address, error) {
	if swap.Recipient != nil {
		if !auth.HasAddress(ctx, swap.Recipient) {
			return nil, errors.Wrap(errors.ErrUnauthorized, "caller is not the recipient")
		}
		return swap.Recipient, nil
	}
	for _, addr := range x.GetAddresses(ctx, auth) {
		if bytes.Equal(BindingHash(addr), swap.RecipientHash) {
			return addr, nil
		}
	}
	return nil, errors.Wrap(errors.ErrUnauthorized, "no caller matches the recorded binding")
}

//---- lock

type lockHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	events orm.ModelBucket
	mover
}

var _ clasp.Handler = (*lockHandler)(nil)

func (h *lockHandler) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &clasp.CheckResult{GasAllocated: lockCost}, nil
}

func (h *lockHandler) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	if guarded(ctx) {
		return nil, errors.Wrap(errors.ErrState, "reentrant swap operation")
	}
	ctx = withGuard(ctx)

	swap, swapID, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	if _, err := h.bucket.Put(db, swapID, swap); err != nil {
		return nil, errors.Wrap(err, "cannot store swap")
	}
	if err := h.escrow(ctx, db, swapID, swap); err != nil {
		return nil, errors.Wrap(err, "cannot escrow funds")
	}

	ev := &Event{Locked: &LockedEvent{
		SwapID:        swapID,
		SecretHash:    swap.SecretHash,
		Kind:          swap.Kind,
		Ticker:        swap.Ticker,
		Amount:        swap.Amount,
		Depositor:     swap.Depositor,
		Recipient:     swap.Recipient,
		Binding:       swap.Binding,
		DesiredTicker: swap.DesiredTicker,
		DesiredAmount: swap.DesiredAmount,
		Expiry:        swap.Expiry,
	}}
	if err := appendEvent(ctx, db, h.events, ev); err != nil {
		return nil, err
	}

	// The identifier is returned so the depositor can hand it to the
	// counter party.
	return &clasp.DeliverResult{
		Data: swapID,
		Tags: []common.KVPair{swapTag(swapID)},
	}, nil
}

// validate does all common pre-processing between Check and Deliver.
// It returns the swap ready to store along with its identifier.
func (h *lockHandler) validate(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*Swap, []byte, error) {
	var msg LockMsg
	if err := clasp.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}

	if !h.auth.HasAddress(ctx, msg.Depositor) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "depositor did not sign")
	}

	blockNow, err := clasp.BlockTime(ctx)
	if err != nil {
		return nil, nil, err
	}
	if msg.Expiry <= clasp.AsUnixTime(blockNow) {
		return nil, nil, errors.Wrapf(errors.ErrExpired, "expiry %s must be in the future", msg.Expiry)
	}

	swap := &Swap{
		Depositor:  msg.Depositor,
		SecretHash: msg.SecretHash,
		Expiry:     msg.Expiry,
	}

	var bindingHash []byte
	switch conf.Policy {
	case PolicyAccount:
		if msg.Recipient == nil {
			return nil, nil, errors.Wrap(errors.ErrInput, "the account policy requires a recipient")
		}
		swap.Recipient = msg.Recipient
		bindingHash = BindingHash(msg.Recipient)
	case PolicyOpaque:
		if msg.Binding == nil {
			return nil, nil, errors.Wrap(errors.ErrInput, "the opaque policy requires a binding")
		}
		swap.Binding = msg.Binding
		swap.RecipientHash = BindingHash(msg.Binding)
		swap.DesiredTicker = msg.DesiredTicker
		swap.DesiredAmount = msg.DesiredAmount
		bindingHash = swap.RecipientHash
	default:
		return nil, nil, errors.Wrapf(errors.ErrState, "unknown policy %d", conf.Policy)
	}

	if msg.NativeAmount != nil {
		if msg.NativeAmount.Ticker != conf.NativeTicker {
			return nil, nil, errors.Wrapf(errors.ErrCurrency, "native swaps lock %s", conf.NativeTicker)
		}
		swap.Kind = NativeKind
		swap.Ticker = msg.NativeAmount.Ticker
		swap.Amount = msg.NativeAmount.Amount
	} else {
		if msg.Token == conf.NativeTicker {
			return nil, nil, errors.Wrapf(errors.ErrCurrency, "%s is the native currency, not a token", msg.Token)
		}
		swap.Kind = TokenKind
		swap.Ticker = msg.Token
		swap.Amount = msg.Amount
	}

	swapID := SwapID(swap.Depositor, swap.SecretHash, bindingHash)

	// An identifier is never reused, a finalized swap occupies it
	// forever. Reusing the exact triple is the only way to collide.
	switch err := h.bucket.Has(db, swapID); {
	case err == nil:
		return nil, nil, errors.Wrapf(errors.ErrDuplicate, "swap %X", swapID)
	case errors.ErrNotFound.Is(err):
		// The identifier is free.
	default:
		return nil, nil, err
	}

	// Under the account policy a claim can resolve the swap from the
	// secret and the claimant alone. Two live swaps sharing that pair
	// would be ambiguous, no matter who deposited them.
	if swap.Recipient != nil {
		var siblings []Swap
		if _, err := h.bucket.ByIndex(db, "lookup", lookupKey(swap.SecretHash, swap.Recipient), &siblings); err != nil {
			return nil, nil, err
		}
		for i := range siblings {
			if !siblings[i].Claimed {
				return nil, nil, errors.Wrap(errors.ErrDuplicate, "a live swap with this secret hash and recipient exists")
			}
		}
	}

	return swap, swapID, nil
}

//---- claim

type claimHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	events orm.ModelBucket
	mover
}

var _ clasp.Handler = (*claimHandler)(nil)

func (h *claimHandler) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &clasp.CheckResult{GasAllocated: claimCost}, nil
}

func (h *claimHandler) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	if guarded(ctx) {
		return nil, errors.Wrap(errors.ErrState, "reentrant swap operation")
	}
	ctx = withGuard(ctx)

	swapID, swap, msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	claimant, err := claimantOf(ctx, h.auth, swap)
	if err != nil {
		return nil, err
	}

	// Finalize before paying out. The transfer may run recipient side
	// code and the swap must already be terminal when it does.
	swap.Claimed = true
	if _, err := h.bucket.Put(db, swapID, swap); err != nil {
		return nil, errors.Wrap(err, "cannot finalize swap")
	}
	if err := h.payOut(ctx, db, swapID, swap, claimant); err != nil {
		return nil, errors.Wrap(err, "cannot pay out")
	}

	// Writing the secret to the log is what publishes it for the
	// mirrored claim on the counter ledger.
	ev := &Event{Claimed: &ClaimedEvent{SwapID: swapID, Secret: msg.Secret}}
	if err := appendEvent(ctx, db, h.events, ev); err != nil {
		return nil, err
	}

	return &clasp.DeliverResult{Tags: []common.KVPair{swapTag(swapID)}}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h *claimHandler) validate(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) ([]byte, *Swap, *ClaimMsg, error) {
	var msg ClaimMsg
	if err := clasp.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}

	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, nil, err
	}
	if conf.ClaimGate == GateClosed {
		return nil, nil, nil, errors.Wrap(errors.ErrState, "claims are halted")
	}

	swapID := msg.SwapID
	var swap *Swap
	if swapID == nil {
		swapID, swap, err = h.lookup(ctx, db, msg.Secret)
	} else {
		swap, err = loadSwap(h.bucket, db, swapID)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	if swap.Claimed {
		return nil, nil, nil, errors.Wrapf(errors.ErrState, "swap %X is finalized", swapID)
	}
	if clasp.IsExpired(ctx, swap.Expiry) {
		return nil, nil, nil, errors.Wrapf(errors.ErrExpired, "swap expired at %s", swap.Expiry)
	}
	if _, err := claimantOf(ctx, h.auth, swap); err != nil {
		return nil, nil, nil, err
	}
	// A failed attempt must cost the caller nothing but the hash
	// comparison, and that comparison must not leak how close the
	// guess was.
	if subtle.ConstantTimeCompare(HashSecret(msg.Secret), swap.SecretHash) != 1 {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "invalid secret")
	}

	return swapID, swap, &msg, nil
}

// lookup resolves a live swap from the revealed secret and the main
// caller. Only swaps bound by a native recipient are indexed, under
// the opaque policy the identifier must be supplied.
func (h *claimHandler) lookup(ctx clasp.Context, db clasp.KVStore, secret []byte) ([]byte, *Swap, error) {
	caller := x.MainSigner(ctx, h.auth)
	if caller == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	var swaps []Swap
	ids, err := h.bucket.ByIndex(db, "lookup", lookupKey(HashSecret(secret), caller.Address()), &swaps)
	if err != nil {
		return nil, nil, err
	}
	// At most one live swap can share the pair, lock enforces it.
	for i := range swaps {
		if !swaps[i].Claimed {
			return ids[i], &swaps[i], nil
		}
	}
	return nil, nil, errors.Wrap(errors.ErrNotFound, "no live swap for this secret and caller")
}

//---- refund

type refundHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	events orm.ModelBucket
	mover
}

var _ clasp.Handler = (*refundHandler)(nil)

func (h *refundHandler) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &clasp.CheckResult{GasAllocated: refundCost}, nil
}

func (h *refundHandler) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	if guarded(ctx) {
		return nil, errors.Wrap(errors.ErrState, "reentrant swap operation")
	}
	ctx = withGuard(ctx)

	swapID, swap, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	swap.Claimed = true
	if _, err := h.bucket.Put(db, swapID, swap); err != nil {
		return nil, errors.Wrap(err, "cannot finalize swap")
	}
	if err := h.payOut(ctx, db, swapID, swap, swap.Depositor); err != nil {
		return nil, errors.Wrap(err, "cannot pay out")
	}

	ev := &Event{Refunded: &RefundedEvent{SwapID: swapID}}
	if err := appendEvent(ctx, db, h.events, ev); err != nil {
		return nil, err
	}

	return &clasp.DeliverResult{Tags: []common.KVPair{swapTag(swapID)}}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h *refundHandler) validate(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) ([]byte, *Swap, error) {
	var msg RefundMsg
	if err := clasp.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	if conf.RefundGate == GateClosed {
		return nil, nil, errors.Wrap(errors.ErrState, "refunds are halted")
	}

	swapID := msg.SwapID
	var swap *Swap
	if swapID == nil {
		swapID, swap, err = h.lookup(ctx, db, msg.SecretHash)
	} else {
		swap, err = loadSwap(h.bucket, db, swapID)
	}
	if err != nil {
		return nil, nil, err
	}

	if swap.Claimed {
		return nil, nil, errors.Wrapf(errors.ErrState, "swap %X is finalized", swapID)
	}
	if !h.auth.HasAddress(ctx, swap.Depositor) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the depositor can refund")
	}
	if !clasp.IsExpired(ctx, swap.Expiry) {
		return nil, nil, errors.Wrapf(errors.ErrState, "swap not expired %v", swap.Expiry)
	}

	return swapID, swap, nil
}

// lookup resolves a live swap of the main caller from the secret
// hash. The same depositor may run several live swaps with one secret
// hash bound to different counter parties, such a refund must name
// the identifier.
func (h *refundHandler) lookup(ctx clasp.Context, db clasp.KVStore, secretHash []byte) ([]byte, *Swap, error) {
	caller := x.MainSigner(ctx, h.auth)
	if caller == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	var swaps []Swap
	ids, err := h.bucket.ByIndex(db, "depositor", caller.Address(), &swaps)
	if err != nil {
		return nil, nil, err
	}
	var (
		swapID []byte
		swap   *Swap
	)
	for i := range swaps {
		if swaps[i].Claimed || !bytes.Equal(swaps[i].SecretHash, secretHash) {
			continue
		}
		if swap != nil {
			return nil, nil, errors.Wrap(errors.ErrState, "ambiguous secret hash, name the swap id")
		}
		swapID, swap = ids[i], &swaps[i]
	}
	if swap == nil {
		return nil, nil, errors.Wrap(errors.ErrNotFound, "no live swap for this secret hash and caller")
	}
	return swapID, swap, nil
}

//---- identifier preview

// idQuery computes commitment identifiers without touching any state,
// so any party can preview the identifier a lock will get.
type idQuery struct{}

var _ clasp.QueryHandler = idQuery{}

// Query expects the fixed width concatenation of depositor, secret
// hash and binding hash and responds with the derived identifier.
func (idQuery) Query(db clasp.ReadOnlyKVStore, mod string, data []byte) ([]clasp.Model, error) {
	if mod != clasp.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported modifier %q", mod)
	}
	const want = clasp.AddressLength + secretHashSize + secretHashSize
	if len(data) != want {
		return nil, errors.Wrapf(errors.ErrInput, "want %d bytes, got %d", want, len(data))
	}
	depositor := clasp.Address(data[:clasp.AddressLength])
	secretHash := data[clasp.AddressLength : clasp.AddressLength+secretHashSize]
	bindingHash := data[clasp.AddressLength+secretHashSize:]
	return []clasp.Model{clasp.Pair(data, SwapID(depositor, secretHash, bindingHash))}, nil
}
