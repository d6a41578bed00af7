package app

import (
	amino "github.com/tendermint/go-amino"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/x/bridge"
	"github.com/clasp-io/clasp/x/cash"
	"github.com/clasp-io/clasp/x/htlc"
	"github.com/clasp-io/clasp/x/token"
)

var cdc = amino.NewCodec()

func init() {
	cdc.RegisterInterface((*clasp.Msg)(nil), nil)
	cdc.RegisterConcrete(&cash.SendMsg{}, "clasp/cash/send", nil)
	cdc.RegisterConcrete(&token.CreateTokenMsg{}, "clasp/token/create", nil)
	cdc.RegisterConcrete(&token.TransferMsg{}, "clasp/token/transfer", nil)
	cdc.RegisterConcrete(&token.ApproveMsg{}, "clasp/token/approve", nil)
	cdc.RegisterConcrete(&bridge.MintMsg{}, "clasp/bridge/mint", nil)
	cdc.RegisterConcrete(&bridge.BurnMsg{}, "clasp/bridge/burn", nil)
	cdc.RegisterConcrete(&bridge.UpdateConfigurationMsg{}, "clasp/bridge/update_configuration", nil)
	cdc.RegisterConcrete(&htlc.LockMsg{}, "clasp/htlc/lock", nil)
	cdc.RegisterConcrete(&htlc.ClaimMsg{}, "clasp/htlc/claim", nil)
	cdc.RegisterConcrete(&htlc.RefundMsg{}, "clasp/htlc/refund", nil)
	cdc.RegisterConcrete(&htlc.UpdateConfigurationMsg{}, "clasp/htlc/update_configuration", nil)
}

// Tx is the transaction envelope of the daemon. It carries exactly one
// message together with the condition of the caller submitting it. The
// transport is trusted to have authenticated the caller, the engine only
// turns the declared condition into permissions on the context.
type Tx struct {
	Msg    clasp.Msg       `json:"msg"`
	Caller clasp.Condition `json:"caller,omitempty"`
}

var (
	_ clasp.Tx = (*Tx)(nil)
	_ CallerTx = (*Tx)(nil)
)

// GetMsg returns the message carried by this transaction.
func (tx *Tx) GetMsg() (clasp.Msg, error) {
	return tx.Msg, nil
}

// GetCaller returns the condition the transport authenticated this
// transaction with. It can be nil for messages that require no
// authorization.
func (tx *Tx) GetCaller() clasp.Condition {
	return tx.Caller
}

func (tx *Tx) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(tx)
}

func (tx *Tx) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, tx)
}

// TxDecoder parses the given bytes into a transaction envelope. Meant to
// be passed into the base application.
func TxDecoder(raw []byte) (clasp.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot parse transaction: %s", err)
	}
	return tx, nil
}

// DecodeJSONTx parses a transaction from its JSON form. The message is
// wrapped in a type/value envelope naming one of the registered message
// types, for example
//
//   {"msg": {"type": "clasp/htlc/claim", "value": {...}}, "caller": "..."}
//
func DecodeJSONTx(raw []byte) (*Tx, error) {
	tx := new(Tx)
	if err := cdc.UnmarshalJSON(raw, tx); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot parse transaction: %s", err)
	}
	return tx, nil
}

// EncodeJSONTx renders a transaction in the JSON form DecodeJSONTx
// understands.
func EncodeJSONTx(tx *Tx) ([]byte, error) {
	return cdc.MarshalJSON(tx)
}
