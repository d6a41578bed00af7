package htlc

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/gconf"
)

// Validate ensures the configuration is complete. It is called by
// gconf before every store, so a patch can never leave a gate or the
// policy unset.
func (c *Configuration) Validate() error {
	var errs error

	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	if !coin.IsCC(c.NativeTicker) {
		errs = errors.Append(errs,
			errors.Field("NativeTicker", errors.ErrCurrency, "invalid ticker %q", c.NativeTicker))
	}
	switch c.Policy {
	case PolicyAccount, PolicyOpaque:
	default:
		errs = errors.Append(errs,
			errors.Field("Policy", errors.ErrState, "unknown policy %d", c.Policy))
	}
	if c.ClaimGate != GateOpen && c.ClaimGate != GateClosed {
		errs = errors.Append(errs,
			errors.Field("ClaimGate", errors.ErrState, "must be open or closed"))
	}
	if c.RefundGate != GateOpen && c.RefundGate != GateClosed {
		errs = errors.Append(errs,
			errors.Field("RefundGate", errors.ErrState, "must be open or closed"))
	}
	return errs
}

// GetOwner implements the gconf owned configuration interface.
func (c *Configuration) GetOwner() clasp.Address {
	return c.Owner
}

// loadConf returns the engine configuration from the database.
func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "htlc", &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}
