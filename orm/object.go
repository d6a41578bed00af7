package orm

import (
	"reflect"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// SimpleObj pairs a key with a value. Type-safe buckets can embed or
// wrap it instead of implementing Object from scratch.
type SimpleObj struct {
	key   []byte
	value Model
}

var _ Object = (*SimpleObj)(nil)

// NewSimpleObj combines a key and a value into an object.
func NewSimpleObj(key []byte, value Model) *SimpleObj {
	return &SimpleObj{
		key:   key,
		value: value,
	}
}

// Value gets the value stored in the object.
func (o SimpleObj) Value() clasp.Persistent {
	return o.value
}

// Key returns the key to store the object under.
func (o SimpleObj) Key() []byte {
	return o.key
}

// Validate requires both fields to be set and the value to pass its
// own validation.
func (o SimpleObj) Validate() error {
	if len(o.key) == 0 {
		return errors.Field("Key", errors.ErrEmpty, "missing key")
	}
	if o.value == nil {
		return errors.Field("Value", errors.ErrEmpty, "missing value")
	}
	return errors.Field("Value", o.value.Validate(), "invalid value")
}

// SetKey updates the key. Buckets use it when loading stored data.
func (o *SimpleObj) SetKey(key []byte) {
	o.key = key
}

// Clone returns a copy holding a freshly allocated value of the same
// dynamic type.
func (o *SimpleObj) Clone() Object {
	value := reflect.New(reflect.TypeOf(o.value).Elem()).Interface().(Model)
	res := &SimpleObj{value: value}
	if len(o.key) > 0 {
		res.key = append([]byte(nil), o.key...)
	}
	return res
}
