package bridge

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
)

var (
	_ clasp.Msg = (*MintMsg)(nil)
	_ clasp.Msg = (*BurnMsg)(nil)
	_ clasp.Msg = (*UpdateConfigurationMsg)(nil)
)

const (
	pathMint       = "bridge/mint"
	pathBurn       = "bridge/burn"
	pathUpdateConf = "bridge/update_configuration"

	maxRefSize = 64
)

func (MintMsg) Path() string {
	return pathMint
}

func (m *MintMsg) Validate() error {
	var errs error

	if !coin.IsCC(m.Ticker) {
		errs = errors.Append(errs,
			errors.Field("Ticker", errors.ErrCurrency, "invalid ticker %q", m.Ticker))
	}
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if m.Amount <= 0 {
		errs = errors.Append(errs,
			errors.Field("Amount", errors.ErrAmount, "must be positive"))
	}
	if len(m.Ref) > maxRefSize {
		errs = errors.Append(errs,
			errors.Field("Ref", errors.ErrInput, "ref too long"))
	}
	return errs
}

func (BurnMsg) Path() string {
	return pathBurn
}

func (m *BurnMsg) Validate() error {
	var errs error

	if !coin.IsCC(m.Ticker) {
		errs = errors.Append(errs,
			errors.Field("Ticker", errors.ErrCurrency, "invalid ticker %q", m.Ticker))
	}
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	if m.Amount <= 0 {
		errs = errors.Append(errs,
			errors.Field("Amount", errors.ErrAmount, "must be positive"))
	}
	if len(m.Ref) > maxRefSize {
		errs = errors.Append(errs,
			errors.Field("Ref", errors.ErrInput, "ref too long"))
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
	if m.Patch.Operator != nil {
		errs = errors.AppendField(errs, "Operator", m.Patch.Operator.Validate())
	}
	return errs
}

// Validate ensures the configuration is complete, it is called by gconf
// before every store.
func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	errs = errors.AppendField(errs, "Operator", c.Operator.Validate())
	return errs
}

// GetOwner implements the gconf owned configuration interface.
func (c *Configuration) GetOwner() clasp.Address {
	return c.Owner
}
