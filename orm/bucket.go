package orm

import (
	"fmt"
	"regexp"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// SeqID names the default ID sequence of a bucket.
const SeqID = "id"

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket owns a prefixed subspace of the database and keeps its
// secondary indexes in sync with every write. All entities share the
// type of the proto object. Embed it in a type-safe wrapper, or use
// ModelBucket for the common case.
type Bucket struct {
	name    string
	prefix  []byte
	proto   Cloneable
	indexes map[string]Index
}

var _ clasp.QueryHandler = Bucket{}

// NewBucket creates a bucket to store data.
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket name: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		proto:  proto,
	}
}

// Name returns the name of the bucket.
func (b Bucket) Name() string {
	return b.name
}

// Register mounts the bucket and every index on the query router. The
// query name can differ from the bucket name used to prefix the data;
// an empty name falls back to the bucket name.
func (b Bucket) Register(name string, r clasp.QueryRouter) {
	if name == "" {
		name = b.name
	}
	root := "/" + name
	r.Register(root, b)
	for name, idx := range b.indexes {
		r.Register(root+"/"+name, idx)
	}
}

// Query handles queries from the QueryRouter.
func (b Bucket) Query(db clasp.ReadOnlyKVStore, mod string, data []byte) ([]clasp.Model, error) {
	switch mod {
	case clasp.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		if value == nil {
			// a miss is an empty result, not an error
			return nil, nil
		}
		return []clasp.Model{clasp.Pair(key, value)}, nil
	case clasp.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	case clasp.RangeQueryMod:
		start, _, end, err := parseQueryRange(data)
		if err != nil {
			return nil, errors.Wrap(err, "query data")
		}
		first, last := prefixRange(b.prefix)
		if len(start) != 0 {
			first = b.DBKey(start)
		}
		if len(end) != 0 {
			last = b.DBKey(end)
		}
		it, err := db.Iterator(first, last)
		if err != nil {
			return nil, errors.Wrap(err, "new iterator")
		}
		return consumeIterator(&paginatedIterator{it: it, remaining: queryRangeLimit})
	default:
		return nil, errors.Wrap(errors.ErrHuman, "not implemented: "+mod)
	}
}

// DBKey prepends the bucket prefix to an entity key. A fresh slice is
// returned so consecutive calls cannot share a backing array.
func (b Bucket) DBKey(key []byte) []byte {
	out := make([]byte, 0, len(b.prefix)+len(key))
	out = append(out, b.prefix...)
	return append(out, key...)
}

// Get one element.
func (b Bucket) Get(db clasp.ReadOnlyKVStore, key []byte) (Object, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return b.Parse(key, raw)
}

// Parse rebuilds the object this bucket stores under key from its
// serialized value. Get uses it internally; it is exported for code
// that reads raw models, query clients mostly.
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrapf(err, "unmarshaling %T", obj.Value())
	}
	obj.SetKey(key)
	return obj, nil
}

// Save validates and writes a model of the proto type, updating every
// index first.
func (b Bucket) Save(db clasp.KVStore, model Object) error {
	if err := model.Validate(); err != nil {
		return err
	}
	raw, err := model.Value().Marshal()
	if err != nil {
		return err
	}
	if err := b.updateIndexes(db, model.Key(), model); err != nil {
		return err
	}
	return db.Set(b.DBKey(model.Key()), raw)
}

// Delete removes the value at a key, updating every index first.
func (b Bucket) Delete(db clasp.KVStore, key []byte) error {
	if err := b.updateIndexes(db, key, nil); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

func (b Bucket) updateIndexes(db clasp.KVStore, key []byte, model Object) error {
	if len(b.indexes) == 0 {
		return nil
	}
	prev, err := b.Get(db, key)
	if err != nil {
		return err
	}
	for _, idx := range b.indexes {
		if err := idx.Update(db, prev, model); err != nil {
			return err
		}
	}
	return nil
}

// Sequence returns a sequence scoped to this bucket by name.
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// WithIndex returns a copy of the bucket with one more index attached.
// Panics when the name is taken; indexes are wired during init where a
// panic is the right failure mode.
func (b Bucket) WithIndex(name string, indexer Indexer, unique bool) Bucket {
	return b.WithMultiKeyIndex(name, asMultiKeyIndexer(indexer), unique)
}

// WithMultiKeyIndex is WithIndex for indexers producing several keys
// per entity.
func (b Bucket) WithMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool) Bucket {
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("index %s registered twice", name))
	}

	add := NewMultiKeyIndex(b.name+"_"+name, indexer, unique, b.DBKey)
	indexes := make(map[string]Index, len(b.indexes)+1)
	for n, i := range b.indexes {
		indexes[n] = i
	}
	indexes[name] = add
	b.indexes = indexes
	return b
}

// Index returns the index with given name, or an error if not present.
func (b Bucket) Index(name string) (Index, error) {
	idx, ok := b.indexes[name]
	if !ok {
		return nil, errors.Wrap(InvalidIndexErr, name)
	}
	return idx, nil
}

// GetIndexed loads all objects the named index files under the key.
func (b Bucket) GetIndexed(db clasp.ReadOnlyKVStore, name string, key []byte) ([]Object, error) {
	idx, err := b.Index(name)
	if err != nil {
		return nil, err
	}
	refs, err := consumeIteratorKeys(idx.Keys(db, key))
	if err != nil {
		return nil, err
	}
	return b.readRefs(db, refs)
}

func (b Bucket) readRefs(db clasp.ReadOnlyKVStore, refs [][]byte) ([]Object, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	objs := make([]Object, len(refs))
	for i, key := range refs {
		obj, err := b.Get(db, key)
		if err != nil {
			return nil, err
		}
		objs[i] = obj
	}
	return objs, nil
}
