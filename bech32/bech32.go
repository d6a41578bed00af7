// Package bech32 adapts the btcsuite bech32 codec to byte payloads.
// The underlying library works on 5-bit groups; this wrapper hides the
// bit regrouping so callers deal in plain bytes.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"

	"github.com/clasp-io/clasp/errors"
)

// Encode returns the bech32 form of the payload under the given human
// readable prefix.
func Encode(hrp string, payload []byte) ([]byte, error) {
	grouped, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return nil, errors.Wrap(err, "regroup payload")
	}
	enc, err := bech32.Encode(hrp, grouped)
	if err != nil {
		return nil, errors.Wrap(err, "encode")
	}
	return []byte(enc), nil
}

// Decode splits a bech32 string into its human readable prefix and the
// raw payload bytes.
func Decode(enc string) (string, []byte, error) {
	hrp, grouped, err := bech32.Decode(enc)
	if err != nil {
		return "", nil, errors.Wrap(err, "decode")
	}
	payload, err := bech32.ConvertBits(grouped, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrap(err, "regroup payload")
	}
	return hrp, payload, nil
}
