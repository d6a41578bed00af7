package orm

import (
	"reflect"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// ModelBucket is implemented by buckets that operate on models rather
// than objects.
type ModelBucket interface {
	// One queries the database for a single model instance. Lookup is
	// done by the primary index key. The result is loaded into the given
	// destination model.
	// This method returns ErrNotFound if the entity does not exist in
	// the database.
	// If the given model type cannot contain the stored entity, ErrType
	// is returned.
	One(db clasp.ReadOnlyKVStore, key []byte, dest Model) error

	// ByIndex returns all objects that secondary index with given name
	// and given key point to. Main index keys of every matching entity
	// are returned as well.
	// This method does not fail if no entity was indexed with given key.
	// Instead an empty result is returned.
	//
	// Destination must be a pointer to a slice of models.
	ByIndex(db clasp.ReadOnlyKVStore, indexName string, key []byte, dest ModelSlicePtr) ([][]byte, error)

	// Put saves given model in the database. A nil key means the ID
	// sequence of this bucket is used to generate one. The key used is
	// returned.
	Put(db clasp.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db clasp.KVStore, key []byte) error

	// Has returns nil if an entity with given primary key value exists,
	// and ErrNotFound otherwise.
	Has(db clasp.KVStore, key []byte) error

	// Register registers this bucket and all its indexes for queries.
	Register(name string, r clasp.QueryRouter)
}

// ModelSlicePtr represents a pointer to a slice of models. Think of it as
// *[]Model. Because of the Go type system, using []Model would not work
// for us. Instead we use a placeholder type and validate during runtime.
type ModelSlicePtr interface{}

// ModelBucketOption is implemented by any function that can configure a
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using the value returned by
// the indexer function. If an index is unique, there can be only one
// entity referenced per index value.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return WithMultiKeyIndex(name, asMultiKeyIndexer(indexer), unique)
}

// WithMultiKeyIndex is WithIndex for indexers that produce any number of
// index values per entity.
func WithMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.b = mb.b.WithMultiKeyIndex(name, indexer, unique)
	}
}

// WithIDSequence configures the bucket to use the given sequence instance
// for generating the primary key, whenever Put is called with a nil key.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.idSeq = &s
	}
}

// NewModelBucket returns a ModelBucket instance storing entities of the
// same type as the given model.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	b := NewBucket(name, NewSimpleObj(nil, m))

	tp := reflect.TypeOf(m)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}

	mb := &modelBucket{
		b:     b,
		model: tp,
	}

	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	b     Bucket
	idSeq *Sequence

	// model references the structure type itself, never the structure's
	// pointer type, even though only the pointer implements the Model
	// interface.
	model reflect.Type
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) Register(name string, r clasp.QueryRouter) {
	mb.b.Register(name, r)
}

func (mb *modelBucket) One(db clasp.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if obj == nil || obj.Value() == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}

	res := obj.Value()
	if !reflect.TypeOf(res).AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %T", res, dest)
	}
	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(res).Elem())
	return nil
}

func (mb *modelBucket) ByIndex(db clasp.ReadOnlyKVStore, indexName string, key []byte, destination ModelSlicePtr) ([][]byte, error) {
	objs, err := mb.b.GetIndexed(db, indexName, key)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, nil
	}

	dest, elemIsPtr, err := sliceDest(destination)
	if err != nil {
		return nil, err
	}
	allowed := dest.Type().Elem()
	if elemIsPtr {
		allowed = allowed.Elem()
	}
	if mb.model != allowed {
		return nil, errors.Wrapf(errors.ErrType, "this bucket operates on %s model and cannot return %s", mb.model, allowed)
	}

	keys := make([][]byte, 0, len(objs))
	for _, obj := range objs {
		val := reflect.ValueOf(obj.Value())
		if !elemIsPtr {
			val = val.Elem()
		}
		dest.Set(reflect.Append(dest, val))
		keys = append(keys, obj.Key())
	}
	return keys, nil
}

// sliceDest dereferences a ModelSlicePtr destination and reports whether
// the slice elements are pointers. Slices of both model values and model
// pointers are accepted.
func sliceDest(destination ModelSlicePtr) (reflect.Value, bool, error) {
	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr {
		return reflect.Value{}, false, errors.Wrap(errors.ErrType, "destination must be a pointer to slice of models")
	}
	if dest.IsNil() {
		return reflect.Value{}, false, errors.Wrap(errors.ErrImmutable, "got nil pointer")
	}
	dest = dest.Elem()
	if dest.Kind() != reflect.Slice {
		return reflect.Value{}, false, errors.Wrap(errors.ErrType, "destination must be a pointer to slice of models")
	}
	switch dest.Type().Elem().Kind() {
	case reflect.Ptr:
		return dest, true, nil
	case reflect.Struct:
		return dest, false, nil
	default:
		return reflect.Value{}, false, errors.Wrap(errors.ErrType, "destination must be a pointer to slice of models")
	}
}

func (mb *modelBucket) Put(db clasp.KVStore, key []byte, m Model) ([]byte, error) {
	mTp := reflect.TypeOf(m)
	if mTp.Kind() != reflect.Ptr {
		return nil, errors.Wrap(errors.ErrType, "model destination must be a pointer")
	}
	if mb.model != mTp.Elem() {
		return nil, errors.Wrapf(errors.ErrType, "cannot store %T type in this bucket", m)
	}

	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	if len(key) == 0 {
		if mb.idSeq == nil {
			return nil, errors.Wrap(errors.ErrInput, "no key and no ID sequence configured")
		}
		var err error
		key, err = mb.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "ID sequence")
		}
	}

	obj := NewSimpleObj(key, m)
	if err := mb.b.Save(db, obj); err != nil {
		return nil, errors.Wrap(err, "cannot store in the database")
	}
	return key, nil
}

func (mb *modelBucket) Delete(db clasp.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

func (mb *modelBucket) Has(db clasp.KVStore, key []byte) error {
	if key == nil {
		// nil key is a special case that the store helpers treat as
		// the beginning of the keyspace
		return errors.ErrNotFound
	}
	raw, err := db.Get(mb.b.DBKey(key))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.ErrNotFound
	}
	return nil
}
