package clasp

import (
	"reflect"

	"github.com/clasp-io/clasp/errors"
)

// Persistent supports Marshal and Unmarshal.
//
// This is the standard serialization contract for everything written to or
// read from the store and for everything sent over the wire.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// Msg is a message that requests a state transition from the application.
// It is passed to a Handler, registered under the message path, that
// executes it.
//
// Messages are the atoms of the state machine and the on-chain API.
type Msg interface {
	Persistent

	// Path returns the routing path for this message, in the form of
	// "extension/operation".
	Path() string

	// Validate performs a stateless check of the message content. It
	// cannot assume any block context.
	Validate() error
}

// Tx represents the transaction envelope carrying exactly one message.
type Tx interface {
	Persistent

	// GetMsg returns the action we wish to communicate
	GetMsg() (Msg, error)
}

// TxDecoder can parse bytes into a Tx.
type TxDecoder func(txBytes []byte) (Tx, error)

// GetPath returns the path of the message inside the transaction, or "?"
// when it cannot be extracted. Meant for logging, never for dispatch.
func GetPath(tx Tx) string {
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		return msg.Path()
	}
	return "?"
}

// LoadMsg extracts the message from the transaction, validates it and loads
// it into the destination. The destination must be a pointer to the same
// concrete message type as carried by the transaction.
func LoadMsg(tx Tx, destination Msg) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrState, "transaction contains no message")
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}

	d := reflect.ValueOf(destination)
	if d.Kind() != reflect.Ptr {
		return errors.Wrapf(errors.ErrType, "destination must be a pointer, got %T", destination)
	}
	m := reflect.ValueOf(msg)
	if m.Type() != d.Type() {
		return errors.Wrapf(errors.ErrType, "want %T message, got %T", destination, msg)
	}
	d.Elem().Set(m.Elem())
	return nil
}
