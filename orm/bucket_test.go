package orm

import (
	"testing"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/clasptest/assert"
	"github.com/clasp-io/clasp/store"
)

func TestBucketName(t *testing.T) {
	// valid names
	NewBucket("cnts", NewSimpleObj(nil, &Counter{}))
	NewBucket("my_data", NewSimpleObj(nil, &Counter{}))

	for _, name := range []string{"", "a", "UPPER", "with space", "waaaaaytoolong"} {
		assert.Panics(t, func() {
			NewBucket(name, NewSimpleObj(nil, &Counter{}))
		})
	}
}

func TestBucketStore(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", NewSimpleObj(nil, &Counter{}))

	// a miss returns nil, nil
	obj, err := b.Get(db, []byte("unknown"))
	assert.Nil(t, err)
	assert.Nil(t, obj)

	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("one"), NewCounter(17))))

	obj, err = b.Get(db, []byte("one"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("one"), obj.Key())
	assert.Equal(t, int64(17), obj.Value().(*Counter).Count)

	// keys with no object must not validate
	if err := b.Save(db, NewSimpleObj(nil, NewCounter(1))); err == nil {
		t.Fatal("expected an error")
	}

	assert.Nil(t, b.Delete(db, []byte("one")))
	obj, err = b.Get(db, []byte("one"))
	assert.Nil(t, err)
	assert.Nil(t, obj)
}

func TestBucketIndexed(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", NewSimpleObj(nil, &Counter{})).
		WithIndex("count", count, false)

	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("a"), NewCounter(7))))
	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("b"), NewCounter(7))))
	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("c"), NewCounter(9))))

	objs, err := b.GetIndexed(db, "count", EncodeSequence(7))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(objs))

	// an unknown index is refused
	if _, err := b.GetIndexed(db, "unknown", EncodeSequence(7)); !InvalidIndexErr.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}

	// updating an object moves the index reference
	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("a"), NewCounter(9))))
	objs, err = b.GetIndexed(db, "count", EncodeSequence(7))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(objs))
	objs, err = b.GetIndexed(db, "count", EncodeSequence(9))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(objs))

	// deleting removes the reference as well
	assert.Nil(t, b.Delete(db, []byte("c")))
	objs, err = b.GetIndexed(db, "count", EncodeSequence(9))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(objs))
}

func TestBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", NewSimpleObj(nil, &Counter{})).
		WithIndex("count", count, false)

	qr := clasp.NewQueryRouter()
	b.Register("counters", qr)

	keys := [][]byte{[]byte("c1"), []byte("c2"), []byte("c3"), []byte("c4")}
	for i, key := range keys {
		assert.Nil(t, b.Save(db, NewSimpleObj(key, NewCounter(int64(i+1)))))
	}

	h := qr.Handler("/counters")
	if h == nil {
		t.Fatal("no handler registered")
	}

	// exact key
	models, err := h.Query(db, clasp.KeyQueryMod, []byte("c2"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(models))
	assert.Equal(t, b.DBKey([]byte("c2")), models[0].Key)

	// a miss is no error and no result
	models, err = h.Query(db, clasp.KeyQueryMod, []byte("nope"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(models))

	// prefix match
	models, err = h.Query(db, clasp.PrefixQueryMod, []byte("c"))
	assert.Nil(t, err)
	assert.Equal(t, len(keys), len(models))

	// range query with no bounds walks the whole bucket
	models, err = h.Query(db, clasp.RangeQueryMod, nil)
	assert.Nil(t, err)
	assert.Equal(t, len(keys), len(models))

	// range query bounds are hex encoded, end is exclusive
	// 6332 is "c2", 6334 is "c4"
	models, err = h.Query(db, clasp.RangeQueryMod, []byte("6332::6334"))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(models))
	assert.Equal(t, b.DBKey([]byte("c2")), models[0].Key)
	assert.Equal(t, b.DBKey([]byte("c3")), models[1].Key)

	// querying through the index
	ih := qr.Handler("/counters/count")
	if ih == nil {
		t.Fatal("no index handler registered")
	}
	models, err = ih.Query(db, clasp.KeyQueryMod, EncodeSequence(3))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(models))
	assert.Equal(t, b.DBKey([]byte("c3")), models[0].Key)
}
