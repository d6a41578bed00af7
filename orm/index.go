package orm

import (
	"bytes"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// Index maintains a secondary lookup on bucket entities.
type Index interface {
	// Name returns the name of this index.
	Name() string

	// Update must be called on every entity change in the bucket so the
	// index reflects the new state.
	//
	// prev == nil means insert
	// save == nil means delete
	// both nil is an error, and both must share the primary key
	Update(db clasp.KVStore, prev Object, save Object) error

	// Keys iterates over the primary keys indexed under the given value.
	// The iterator yields nil values so no entity data is loaded before
	// it is needed.
	Keys(db clasp.ReadOnlyKVStore, value []byte) clasp.Iterator

	// Query handles queries from the QueryRouter.
	Query(db clasp.ReadOnlyKVStore, mod string, data []byte) ([]clasp.Model, error)
}

const indexPrefix = "_i."

// Indexer calculates the secondary index key for a given object.
type Indexer func(Object) ([]byte, error)

// MultiKeyIndexer calculates the secondary index keys for a given object.
type MultiKeyIndexer func(Object) ([][]byte, error)

// index is the compact index implementation: every indexed value owns a
// single database entry holding all primary keys filed under it. A
// unique index stores the one primary key directly, a non-unique one a
// serialized MultiRef. Exact lookups are a single read either way.
type index struct {
	name      string
	prefix    []byte
	unique    bool
	indexer   MultiKeyIndexer
	entityKey func([]byte) []byte
}

var _ Index = index{}
var _ clasp.QueryHandler = index{}

// NewMultiKeyIndex configures an index over the values the indexer
// computes. With unique set the index rejects two entities sharing a
// value. entityKey maps a primary key to the absolute database key of
// the entity, usually the owning bucket's DBKey.
func NewMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool, entityKey func([]byte) []byte) Index {
	return index{
		name:      name,
		prefix:    []byte(indexPrefix + name + ":"),
		indexer:   indexer,
		unique:    unique,
		entityKey: entityKey,
	}
}

// NewIndex constructs an index from a single key indexer.
func NewIndex(name string, indexer Indexer, unique bool, entityKey func([]byte) []byte) Index {
	return NewMultiKeyIndex(name, asMultiKeyIndexer(indexer), unique, entityKey)
}

// asMultiKeyIndexer lifts a single key indexer into the multi key form.
func asMultiKeyIndexer(indexer Indexer) MultiKeyIndexer {
	return func(obj Object) ([][]byte, error) {
		switch key, err := indexer(obj); {
		case err != nil:
			return nil, err
		case key == nil:
			return nil, nil
		default:
			return [][]byte{key}, nil
		}
	}
}

func (i index) Name() string {
	return i.name
}

// rowKey is the full database key of an indexed value. A fresh slice is
// returned so consecutive calls cannot share a backing array.
func (i index) rowKey(value []byte) []byte {
	out := make([]byte, 0, len(i.prefix)+len(value))
	out = append(out, i.prefix...)
	return append(out, value...)
}

// Update reconciles the index with an entity change.
func (i index) Update(db clasp.KVStore, prev Object, save Object) error {
	switch {
	case prev == nil && save == nil:
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil object")
	case prev == nil:
		values, err := i.indexer(save)
		if err != nil {
			return err
		}
		for _, v := range values {
			if err := i.insert(db, v, save.Key()); err != nil {
				return err
			}
		}
		return nil
	case save == nil:
		values, err := i.indexer(prev)
		if err != nil {
			return err
		}
		for _, v := range values {
			if err := i.remove(db, v, prev.Key()); err != nil {
				return err
			}
		}
		return nil
	default:
		return i.move(db, prev, save)
	}
}

// Keys returns an iterator over all primary keys indexed under value.
func (i index) Keys(db clasp.ReadOnlyKVStore, value []byte) clasp.Iterator {
	row, err := db.Get(i.rowKey(value))
	switch {
	case err != nil:
		return &errIterator{err: err}
	case row == nil:
		return &errIterator{err: errors.ErrIteratorDone}
	case i.unique:
		return &refsIterator{refs: [][]byte{row}}
	}
	var refs MultiRef
	if err := refs.Unmarshal(row); err != nil {
		return &errIterator{err: err}
	}
	return &refsIterator{refs: refs.GetRefs()}
}

// errIterator fails every Next call with a fixed error.
type errIterator struct {
	err error
}

var _ clasp.Iterator = (*errIterator)(nil)

func (it *errIterator) Next() ([]byte, []byte, error) {
	return nil, nil, it.err
}

func (errIterator) Release() {}

// refsIterator yields a fixed list of primary keys, values always nil.
type refsIterator struct {
	refs [][]byte
}

var _ clasp.Iterator = (*refsIterator)(nil)

func (it *refsIterator) Next() ([]byte, []byte, error) {
	if len(it.refs) == 0 {
		return nil, nil, errors.ErrIteratorDone
	}
	next := it.refs[0]
	it.refs = it.refs[1:]
	return next, nil, nil
}

func (refsIterator) Release() {}

// refsByPrefix collects the primary keys of every index row whose value
// begins with the given prefix.
func (i index) refsByPrefix(db clasp.ReadOnlyKVStore, prefix []byte) ([][]byte, error) {
	start, end := prefixRange(i.rowKey(prefix))
	itr, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer itr.Release()

	var refs [][]byte
	for {
		_, row, err := itr.Next()
		switch {
		case errors.ErrIteratorDone.Is(err):
			return refs, nil
		case err != nil:
			return nil, err
		case i.unique:
			refs = append(refs, row)
		default:
			var mref MultiRef
			if err := mref.Unmarshal(row); err != nil {
				return nil, err
			}
			refs = append(refs, mref.Refs...)
		}
	}
}

// Query handles queries from the QueryRouter.
func (i index) Query(db clasp.ReadOnlyKVStore, mod string, data []byte) ([]clasp.Model, error) {
	switch mod {
	case clasp.KeyQueryMod:
		refs, err := consumeIteratorKeys(i.Keys(db, data))
		if err != nil {
			return nil, err
		}
		return i.loadEntities(db, refs)
	case clasp.PrefixQueryMod:
		refs, err := i.refsByPrefix(db, data)
		if err != nil {
			return nil, err
		}
		return i.loadEntities(db, refs)
	case clasp.RangeQueryMod:
		start, offset, end, err := parseQueryRange(data)
		if err != nil {
			return nil, errors.Wrap(err, "query data")
		}
		if len(start) == 0 {
			start = []byte{0}
		}
		if len(end) == 0 {
			end = bytes.Repeat([]byte{255}, 128) // no limit
		}
		it, err := db.Iterator(i.rowKey(start), i.rowKey(end))
		if err != nil {
			return nil, errors.Wrap(err, "new iterator")
		}
		if len(offset) > 0 {
			offset = i.entityKey(offset)
		}
		ranged := &rangeIterator{
			db:        db,
			rows:      it,
			start:     i.rowKey(start),
			entityKey: i.entityKey,
			unique:    i.unique,
			offset:    offset,
		}
		return consumeIterator(&paginatedIterator{it: ranged, remaining: queryRangeLimit})
	default:
		return nil, errors.Wrap(errors.ErrHuman, "not implemented: "+mod)
	}
}

// rangeIterator walks index rows in order and yields the key-value
// pairs of the entities they reference.
type rangeIterator struct {
	db        clasp.ReadOnlyKVStore
	rows      clasp.Iterator
	start     []byte
	offset    []byte
	unique    bool
	entityKey func([]byte) []byte

	// primary keys of the current row still to be served
	pending [][]byte
}

func (it *rangeIterator) Next() ([]byte, []byte, error) {
	for {
		ref, err := it.nextRef()
		if err != nil {
			return nil, nil, err
		}
		key := it.entityKey(ref)
		// Offset is inclusive; skip everything before it.
		if len(it.offset) > 0 && bytes.Compare(key, it.offset) < 0 {
			continue
		}
		value, err := it.db.Get(key)
		if err != nil {
			return nil, nil, errors.Wrap(err, "get referenced entity")
		}
		return key, value, nil
	}
}

func (it *rangeIterator) nextRef() ([]byte, error) {
	for len(it.pending) == 0 {
		k, row, err := it.rows.Next()
		if err != nil {
			return nil, errors.Wrap(err, "index rows")
		}
		// Index values sort byte-wise regardless of length, so value
		// 100 comes before 11. Rows shorter than the start value are
		// outside the requested range and skipped.
		if len(k) < len(it.start) {
			continue
		}
		if it.unique {
			it.pending = [][]byte{row}
		} else {
			var mref MultiRef
			if err := mref.Unmarshal(row); err != nil {
				return nil, errors.Wrap(err, "unmarshal index MultiRef")
			}
			it.pending = mref.Refs
		}
	}
	ref := it.pending[0]
	it.pending = it.pending[1:]
	return ref, nil
}

func (it *rangeIterator) Release() {
	it.rows.Release()
}

// loadEntities resolves primary keys into full key-value models.
func (i index) loadEntities(db clasp.ReadOnlyKVStore, refs [][]byte) ([]clasp.Model, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	models := make([]clasp.Model, len(refs))
	for n, ref := range refs {
		key := i.entityKey(ref)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		models[n] = clasp.Pair(key, value)
	}
	return models, nil
}

// move reindexes an entity whose indexed values may have changed.
func (i index) move(db clasp.KVStore, prev Object, save Object) error {
	if !bytes.Equal(prev.Key(), save.Key()) {
		return errors.Wrap(errors.ErrImmutable, "cannot modify the primary key of an object")
	}

	oldValues, err := i.indexer(prev)
	if err != nil {
		return err
	}
	newValues, err := i.indexer(save)
	if err != nil {
		return err
	}
	added := subtract(newValues, oldValues)
	dropped := subtract(oldValues, newValues)

	// The unique constraint must hold before anything is written.
	if i.unique {
		for _, v := range added {
			taken, err := db.Get(i.rowKey(v))
			if err != nil {
				return err
			}
			if taken != nil {
				return errors.Wrap(errors.ErrDuplicate, i.name)
			}
		}
	}

	for _, v := range dropped {
		if err := i.remove(db, v, prev.Key()); err != nil {
			return err
		}
	}
	for _, v := range added {
		if err := i.insert(db, v, prev.Key()); err != nil {
			return err
		}
	}
	return nil
}

// subtract returns all elements of from that are not in drop.
func subtract(from [][]byte, drop [][]byte) [][]byte {
	if from == nil {
		return nil
	}
	keep := make([][]byte, 0, len(from))
next:
	for _, f := range from {
		for _, d := range drop {
			if bytes.Equal(f, d) {
				continue next
			}
		}
		keep = append(keep, f)
	}
	return keep
}

func (i index) remove(db clasp.KVStore, value []byte, pk []byte) error {
	// a nil index value means the entity was never indexed
	if len(value) == 0 {
		return nil
	}

	key := i.rowKey(value)
	cur, err := db.Get(key)
	if err != nil {
		return err
	}
	if cur == nil {
		return errors.Wrap(errors.ErrNotFound, "cannot remove index from nothing")
	}
	if i.unique {
		if !bytes.Equal(cur, pk) {
			return errors.Wrap(errors.ErrNotFound, "cannot remove index from invalid object")
		}
		return db.Delete(key)
	}

	var refs MultiRef
	if err := refs.Unmarshal(cur); err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return err
	}
	if refs.Size() == 0 {
		return db.Delete(key)
	}
	row, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, row)
}

func (i index) insert(db clasp.KVStore, value []byte, pk []byte) error {
	// a nil index value means the entity opts out of this index
	if len(value) == 0 {
		return nil
	}

	key := i.rowKey(value)
	cur, err := db.Get(key)
	if err != nil {
		return err
	}

	if i.unique {
		if cur != nil {
			return errors.Wrap(errors.ErrDuplicate, i.name)
		}
		return db.Set(key, pk)
	}

	var refs MultiRef
	if cur != nil {
		if err := refs.Unmarshal(cur); err != nil {
			return err
		}
	}
	if err := refs.Add(pk); err != nil {
		return err
	}
	row, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, row)
}
