package htlc

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
)

var (
	_ clasp.Msg = (*LockMsg)(nil)
	_ clasp.Msg = (*ClaimMsg)(nil)
	_ clasp.Msg = (*RefundMsg)(nil)
	_ clasp.Msg = (*UpdateConfigurationMsg)(nil)
)

const (
	pathLock       = "htlc/lock"
	pathClaim      = "htlc/claim"
	pathRefund     = "htlc/refund"
	pathUpdateConf = "htlc/update_configuration"
)

func (LockMsg) Path() string {
	return pathLock
}

func (m *LockMsg) Validate() error {
	var errs error

	errs = errors.AppendField(errs, "Depositor", m.Depositor.Validate())
	errs = errors.AppendField(errs, "SecretHash", validateSecretHash(m.SecretHash))

	switch {
	case m.Recipient != nil && m.Binding != nil:
		errs = errors.Append(errs,
			errors.Field("Binding", errors.ErrInput, "recipient and binding are exclusive"))
	case m.Recipient != nil:
		errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
		if m.DesiredTicker != "" || m.DesiredAmount != 0 {
			errs = errors.Append(errs,
				errors.Field("DesiredTicker", errors.ErrInput, "desired metadata requires a binding"))
		}
	case m.Binding != nil:
		if len(m.Binding) == 0 || len(m.Binding) > maxBindingSize {
			errs = errors.Append(errs,
				errors.Field("Binding", errors.ErrInput, "must be 1 to %d bytes", maxBindingSize))
		}
		errs = errors.AppendField(errs, "DesiredAmount", validateDesired(m.DesiredTicker, m.DesiredAmount))
	default:
		errs = errors.Append(errs,
			errors.Field("Recipient", errors.ErrEmpty, "a counter party binding is required"))
	}

	if m.Expiry == 0 {
		errs = errors.Append(errs,
			errors.Field("Expiry", errors.ErrInput, "required"))
	}
	errs = errors.AppendField(errs, "Expiry", m.Expiry.Validate())

	switch {
	case m.NativeAmount != nil && (m.Token != "" || m.Amount != 0):
		errs = errors.Append(errs,
			errors.Field("Token", errors.ErrInput, "native and token amounts are exclusive"))
	case m.NativeAmount != nil:
		errs = errors.AppendField(errs, "NativeAmount", m.NativeAmount.Validate())
		if !m.NativeAmount.IsPositive() {
			errs = errors.Append(errs,
				errors.Field("NativeAmount", errors.ErrAmount, "must be positive"))
		}
	case m.Token != "":
		if !coin.IsCC(m.Token) {
			errs = errors.Append(errs,
				errors.Field("Token", errors.ErrCurrency, "invalid ticker %q", m.Token))
		}
		if m.Amount <= 0 {
			errs = errors.Append(errs,
				errors.Field("Amount", errors.ErrAmount, "must be positive"))
		}
		errs = errors.AppendField(errs, "Amount",
			coin.NewCoin(m.Amount, m.Token).Validate())
	default:
		errs = errors.Append(errs,
			errors.Field("NativeAmount", errors.ErrEmpty, "an amount is required"))
	}

	return errs
}

func (ClaimMsg) Path() string {
	return pathClaim
}

func (m *ClaimMsg) Validate() error {
	var errs error

	if m.SwapID != nil && len(m.SwapID) != swapIDSize {
		errs = errors.Append(errs,
			errors.Field("SwapID", errors.ErrInput, "must be exactly %d bytes", swapIDSize))
	}
	if len(m.Secret) != secretSize {
		errs = errors.Append(errs,
			errors.Field("Secret", errors.ErrInput, "must be exactly %d bytes", secretSize))
	}
	return errs
}

func (RefundMsg) Path() string {
	return pathRefund
}

func (m *RefundMsg) Validate() error {
	var errs error

	switch {
	case m.SwapID == nil && m.SecretHash == nil:
		errs = errors.Append(errs,
			errors.Field("SwapID", errors.ErrEmpty, "a swap id or a secret hash is required"))
	case m.SwapID != nil && m.SecretHash != nil:
		errs = errors.Append(errs,
			errors.Field("SecretHash", errors.ErrInput, "swap id and secret hash are exclusive"))
	case m.SwapID != nil:
		if len(m.SwapID) != swapIDSize {
			errs = errors.Append(errs,
				errors.Field("SwapID", errors.ErrInput, "must be exactly %d bytes", swapIDSize))
		}
	case m.SecretHash != nil:
		errs = errors.AppendField(errs, "SecretHash", validateSecretHash(m.SecretHash))
	}
	return errs
}

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConf
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty, "patch is required")
	}
	// Zero valued patch fields keep the current configuration, only
	// provided values must be well formed.
	var errs error
	if m.Patch.Owner != nil {
		errs = errors.AppendField(errs, "Owner", m.Patch.Owner.Validate())
	}
	if m.Patch.NativeTicker != "" && !coin.IsCC(m.Patch.NativeTicker) {
		errs = errors.Append(errs,
			errors.Field("NativeTicker", errors.ErrCurrency, "invalid ticker %q", m.Patch.NativeTicker))
	}
	if m.Patch.Policy != 0 {
		errs = errors.Append(errs,
			errors.Field("Policy", errors.ErrImmutable, "the binding policy is fixed at genesis"))
	}
	errs = errors.AppendField(errs, "ClaimGate", m.Patch.ClaimGate.validate())
	errs = errors.AppendField(errs, "RefundGate", m.Patch.RefundGate.validate())
	return errs
}

func (g Gate) validate() error {
	switch g {
	case GateUnset, GateOpen, GateClosed:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "unknown gate %d", g)
}
