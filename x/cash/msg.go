package cash

import (
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
)

const (
	pathSend = "cash/send"

	maxMemoSize = 128
	maxRefSize  = 64
)

// Path returns the routing path for this message.
func (SendMsg) Path() string {
	return pathSend
}

// Validate makes sure that this is sensible.
func (m *SendMsg) Validate() error {
	var errs error

	if coin.IsEmpty(m.Amount) || !m.Amount.IsPositive() {
		errs = errors.Append(errs,
			errors.Field("Amount", errors.ErrAmount, "must be positive"))
	} else {
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if len(m.Memo) > maxMemoSize {
		errs = errors.Append(errs,
			errors.Field("Memo", errors.ErrInput, "memo too long"))
	}
	if len(m.Ref) > maxRefSize {
		errs = errors.Append(errs,
			errors.Field("Ref", errors.ErrInput, "ref too long"))
	}
	return errs
}
