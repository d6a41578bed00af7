package orm

import (
	"github.com/clasp-io/clasp"
)

// Keyed is anything that can identify itself.
type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

// Cloneable will create a new object that can be loaded into.
type Cloneable interface {
	Clone() Object
}

// Object is what is stored in the bucket. Key is joined with the bucket
// prefix to build the full database key.
type Object interface {
	Keyed
	Cloneable
	// Validate returns an error if the object is not in a valid state to
	// save to the db (eg. field missing, out of range, ...).
	Validate() error

	Value() clasp.Persistent
}

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	clasp.Persistent
	Validate() error
}
