package token

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
)

var (
	_ clasp.Msg = (*CreateTokenMsg)(nil)
	_ clasp.Msg = (*TransferMsg)(nil)
	_ clasp.Msg = (*ApproveMsg)(nil)
)

const (
	pathCreate   = "token/create"
	pathTransfer = "token/transfer"
	pathApprove  = "token/approve"
)

func (CreateTokenMsg) Path() string {
	return pathCreate
}

func (m *CreateTokenMsg) Validate() error {
	var errs error

	if !coin.IsCC(m.Ticker) {
		errs = errors.Append(errs,
			errors.Field("Ticker", errors.ErrCurrency, "invalid ticker %q", m.Ticker))
	}
	if !isTokenName(m.Name) {
		errs = errors.Append(errs,
			errors.Field("Name", errors.ErrInput, "invalid token name %q", m.Name))
	}
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	if m.InitialSupply < 0 {
		errs = errors.Append(errs,
			errors.Field("InitialSupply", errors.ErrAmount, "must not be negative"))
	}
	return errs
}

func (TransferMsg) Path() string {
	return pathTransfer
}

func (m *TransferMsg) Validate() error {
	var errs error

	if !coin.IsCC(m.Ticker) {
		errs = errors.Append(errs,
			errors.Field("Ticker", errors.ErrCurrency, "invalid ticker %q", m.Ticker))
	}
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if m.Amount <= 0 {
		errs = errors.Append(errs,
			errors.Field("Amount", errors.ErrAmount, "must be positive"))
	}
	return errs
}

func (ApproveMsg) Path() string {
	return pathApprove
}

func (m *ApproveMsg) Validate() error {
	var errs error

	if !coin.IsCC(m.Ticker) {
		errs = errors.Append(errs,
			errors.Field("Ticker", errors.ErrCurrency, "invalid ticker %q", m.Ticker))
	}
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "Spender", m.Spender.Validate())
	if m.Amount < 0 {
		errs = errors.Append(errs,
			errors.Field("Amount", errors.ErrAmount, "must not be negative"))
	}
	return errs
}
