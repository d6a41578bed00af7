package htlc

import (
	"crypto/sha256"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/orm"
)

const (
	// secretSize is the exact size of a secret in bytes.
	secretSize = 32
	// secretHashSize is the size of a sha256 commitment.
	secretHashSize = 32
	// swapIDSize is the size of a commitment identifier.
	swapIDSize = 32
	// maxBindingSize bounds an opaque counter party identifier.
	maxBindingSize = 64
)

var _ orm.Model = (*Swap)(nil)

// Validate ensures the swap is well formed before it hits the store.
func (s *Swap) Validate() error {
	var errs error

	switch s.Kind {
	case NativeKind, TokenKind:
	default:
		errs = errors.Append(errs,
			errors.Field("Kind", errors.ErrState, "unknown kind %d", s.Kind))
	}
	errs = errors.AppendField(errs, "Amount",
		coin.NewCoin(s.Amount, s.Ticker).Validate())
	if s.Amount <= 0 {
		errs = errors.Append(errs,
			errors.Field("Amount", errors.ErrAmount, "must be positive"))
	}
	errs = errors.AppendField(errs, "Depositor", s.Depositor.Validate())
	errs = errors.AppendField(errs, "SecretHash", validateSecretHash(s.SecretHash))
	if s.Expiry == 0 {
		errs = errors.Append(errs,
			errors.Field("Expiry", errors.ErrInput, "required"))
	}
	errs = errors.AppendField(errs, "Expiry", s.Expiry.Validate())

	switch {
	case s.Recipient != nil && s.Binding != nil:
		errs = errors.Append(errs,
			errors.Field("Binding", errors.ErrState, "recipient and binding are exclusive"))
	case s.Recipient != nil:
		errs = errors.AppendField(errs, "Recipient", s.Recipient.Validate())
		if s.RecipientHash != nil {
			errs = errors.Append(errs,
				errors.Field("RecipientHash", errors.ErrState, "set only with a binding"))
		}
		if s.DesiredTicker != "" || s.DesiredAmount != 0 {
			errs = errors.Append(errs,
				errors.Field("DesiredTicker", errors.ErrState, "desired metadata requires a binding"))
		}
	case s.Binding != nil:
		if len(s.Binding) > maxBindingSize {
			errs = errors.Append(errs,
				errors.Field("Binding", errors.ErrInput, "longer than %d bytes", maxBindingSize))
		}
		if !hashMatches(s.RecipientHash, s.Binding) {
			errs = errors.Append(errs,
				errors.Field("RecipientHash", errors.ErrState, "does not commit to the binding"))
		}
		errs = errors.AppendField(errs, "DesiredAmount", validateDesired(s.DesiredTicker, s.DesiredAmount))
	default:
		errs = errors.Append(errs,
			errors.Field("Recipient", errors.ErrEmpty, "a counter party binding is required"))
	}

	return errs
}

func validateSecretHash(hash []byte) error {
	if len(hash) != secretHashSize {
		return errors.Wrapf(errors.ErrInput, "must be exactly %d bytes", secretHashSize)
	}
	var zero [secretHashSize]byte
	if string(hash) == string(zero[:]) {
		return errors.Wrap(errors.ErrEmpty, "must not be all zero")
	}
	return nil
}

// validateDesired checks the advisory counter ledger metadata. Both
// fields are optional but must come as a pair.
func validateDesired(ticker string, amount int64) error {
	if ticker == "" && amount == 0 {
		return nil
	}
	if ticker == "" || amount == 0 {
		return errors.Wrap(errors.ErrInput, "desired ticker and amount come together")
	}
	if !coin.IsCC(ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid desired ticker %q", ticker)
	}
	if amount < 0 {
		return errors.Wrap(errors.ErrAmount, "desired amount must be positive")
	}
	return coin.NewCoin(amount, ticker).Validate()
}

func hashMatches(hash, data []byte) bool {
	if len(hash) != secretHashSize {
		return false
	}
	sum := sha256.Sum256(data)
	return string(hash) == string(sum[:])
}

// HashSecret is the one way commitment function shared by both legs of
// a swap. The counter ledger contract must apply the same primitive or
// the revealed secret cannot unlock both.
func HashSecret(secret []byte) []byte {
	sum := sha256.Sum256(secret)
	return sum[:]
}

// BindingHash commits to a counter party binding of any format.
func BindingHash(binding []byte) []byte {
	sum := sha256.Sum256(binding)
	return sum[:]
}

// SwapID derives the commitment identifier. All inputs are fixed width
// (20, 32 and 32 bytes) so the concatenation is unambiguous. The
// function is pure, anyone knowing the inputs can precompute the
// identifier before the lock transaction confirms, while a third party
// without the secret hash cannot predict it.
func SwapID(depositor clasp.Address, secretHash, bindingHash []byte) []byte {
	h := sha256.New()
	h.Write(depositor)
	h.Write(secretHash)
	h.Write(bindingHash)
	return h.Sum(nil)
}

// SwapAddr is the escrow account holding the locked funds of a swap.
// No key can sign for it, the engine moves its funds only through the
// claim and refund paths.
func SwapAddr(swapID []byte) clasp.Address {
	return clasp.NewCondition("htlc", "swap", swapID).Address()
}

// moduleCond is the identity the engine pulls pre-authorized token
// deposits through.
var moduleCond = clasp.NewCondition("htlc", "module", []byte("deposits"))

// ModuleAddr is the account a depositor must grant a token allowance
// to before locking external assets.
func ModuleAddr() clasp.Address {
	return moduleCond.Address()
}

// lookupKey is the value indexed for resolving a live swap from the
// revealed secret. It commits to both the secret hash and the account
// entitled to claim.
func lookupKey(secretHash []byte, recipient clasp.Address) []byte {
	h := sha256.New()
	h.Write(secretHash)
	h.Write(recipient)
	return h.Sum(nil)
}

// NewSwapBucket returns the bucket storing all swaps, keyed by the
// commitment identifier. The lookup index exists only for swaps bound
// by a native recipient, opaque bindings are resolved by identifier
// alone.
func NewSwapBucket() orm.ModelBucket {
	return orm.NewModelBucket("htlc", &Swap{},
		orm.WithIndex("lookup", idxLookup, false),
		orm.WithIndex("depositor", idxDepositor, false),
	)
}

func asSwap(obj orm.Object) (*Swap, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	swap, ok := obj.Value().(*Swap)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "can only take index of Swap")
	}
	return swap, nil
}

func idxLookup(obj orm.Object) ([]byte, error) {
	swap, err := asSwap(obj)
	if err != nil {
		return nil, err
	}
	if swap.Recipient == nil {
		return nil, nil
	}
	return lookupKey(swap.SecretHash, swap.Recipient), nil
}

func idxDepositor(obj orm.Object) ([]byte, error) {
	swap, err := asSwap(obj)
	if err != nil {
		return nil, err
	}
	return swap.Depositor, nil
}
