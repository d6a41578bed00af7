package coin

import (
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Marshal serializes the coin using the package codec.
func (c *Coin) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

// Unmarshal replaces the content of the coin with the serialized data.
func (c *Coin) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}
