package token

import (
	"github.com/clasp-io/clasp"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Token is the registry entry of a single asset, stored under the
// ticker as the key.
type Token struct {
	Name string `json:"name"`
}

// Balance is the amount of one token held by a single account. The
// bucket key encodes both the account and the ticker.
type Balance struct {
	Ticker string `json:"ticker"`
	Amount int64  `json:"amount"`
}

// Allowance is the amount a spender is allowed to pull from the owner
// account. The bucket key encodes owner, spender and ticker.
type Allowance struct {
	Ticker string `json:"ticker"`
	Amount int64  `json:"amount"`
}

// CreateTokenMsg registers a new ticker and mints the initial supply to
// the owner account.
type CreateTokenMsg struct {
	Ticker        string        `json:"ticker"`
	Name          string        `json:"name"`
	Owner         clasp.Address `json:"owner"`
	InitialSupply int64         `json:"initial_supply"`
}

// TransferMsg moves tokens between two accounts.
type TransferMsg struct {
	Ticker      string        `json:"ticker"`
	Source      clasp.Address `json:"source"`
	Destination clasp.Address `json:"destination"`
	Amount      int64         `json:"amount"`
}

// ApproveMsg sets the allowance of a spender over the owner account to
// the given amount. Zero clears the allowance.
type ApproveMsg struct {
	Ticker  string        `json:"ticker"`
	Owner   clasp.Address `json:"owner"`
	Spender clasp.Address `json:"spender"`
	Amount  int64         `json:"amount"`
}

func (t *Token) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(t)
}

func (t *Token) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, t)
}

func (b *Balance) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(b)
}

func (b *Balance) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, b)
}

func (a *Allowance) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(a)
}

func (a *Allowance) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, a)
}

func (m *CreateTokenMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *CreateTokenMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *TransferMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *TransferMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *ApproveMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *ApproveMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}
