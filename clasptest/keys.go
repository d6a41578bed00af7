package clasptest

import (
	"crypto/rand"

	"github.com/clasp-io/clasp"
)

// NewCondition returns a new condition backed by random data. Every call
// returns a different condition. The engine never inspects the condition
// data, so random bytes authenticate as well as a real public key would.
func NewCondition() clasp.Condition {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		panic(err)
	}
	return clasp.NewCondition("test", "rand", raw)
}
