package x

import (
	"github.com/clasp-io/clasp"
)

// Authenticator resolves who authorized the current transaction from
// the context. Handlers receive one through their constructor, so the
// authentication scheme stays pluggable and no extension hard-codes
// one implementation.
type Authenticator interface {
	// GetConditions returns every condition fulfilled by the
	// transaction. See GetAddresses for the address form.
	GetConditions(clasp.Context) []clasp.Condition

	// HasAddress reports whether any fulfilled condition controls the
	// given address.
	HasAddress(clasp.Context, clasp.Address) bool
}

// MultiAuth queries several Authenticators as one.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth combines the given Authenticators. Conditions are
// collected in the order the authenticators are listed.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls: impls}
}

func (m MultiAuth) GetConditions(ctx clasp.Context) []clasp.Condition {
	var res []clasp.Condition
	for _, impl := range m.impls {
		res = append(res, impl.GetConditions(ctx)...)
	}
	return res
}

func (m MultiAuth) HasAddress(ctx clasp.Context, addr clasp.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses returns the addresses of all fulfilled conditions.
func GetAddresses(ctx clasp.Context, auth Authenticator) []clasp.Address {
	conds := auth.GetConditions(ctx)
	addrs := make([]clasp.Address, len(conds))
	for i, c := range conds {
		addrs[i] = c.Address()
	}
	return addrs
}

// MainSigner returns the first fulfilled condition, or nil when the
// transaction was not authorized at all.
func MainSigner(ctx clasp.Context, auth Authenticator) clasp.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

// HasAllConditions reports whether every required condition is
// fulfilled.
func HasAllConditions(ctx clasp.Context, auth Authenticator, required []clasp.Condition) bool {
	return HasNConditions(ctx, auth, required, len(required))
}

// HasNConditions reports whether at least n of the requested
// conditions are fulfilled. This supports threshold rules such as 3 of
// 5 signatures.
func HasNConditions(ctx clasp.Context, auth Authenticator, requested []clasp.Condition, n int) bool {
	if n <= 0 {
		return true
	}
	fulfilled := auth.GetConditions(ctx)
	for _, req := range requested {
		for _, f := range fulfilled {
			if f.Equals(req) {
				n--
				break
			}
		}
		if n == 0 {
			return true
		}
	}
	return false
}
