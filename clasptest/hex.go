package clasptest

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/clasp-io/clasp"
)

// RandomAddr generates a fresh, valid random address.
func RandomAddr(t testing.TB) clasp.Address {
	raw := make([]byte, clasp.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	a := clasp.Address(raw)
	if err := a.Validate(); err != nil {
		t.Fatalf("generated address is not a valid address: %s", err)
	}
	return a
}

// DecodeAddr parses a hex encoded address and fails the test unless
// the result is a valid address.
func DecodeAddr(t testing.TB, encoded string) clasp.Address {
	t.Helper()
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		t.Fatalf("cannot decode hex string: %s", err)
	}
	a := clasp.Address(raw)
	if err := a.Validate(); err != nil {
		t.Fatalf("decoded string is not a valid address: %s", err)
	}
	return a
}
