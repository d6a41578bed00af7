package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clasp-io/clasp/errors"
)

func TestBTreeCacheGetSet(t *testing.T) {
	base := MemStore()

	k, v := []byte("french"), []byte("fry")

	// Empty read.
	got, err := base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
	has, err := base.Has(k)
	require.NoError(t, err)
	assert.False(t, has)

	// Set and read.
	require.NoError(t, base.Set(k, v))
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)
	has, err = base.Has(k)
	require.NoError(t, err)
	assert.True(t, has)

	// Delete and read.
	require.NoError(t, base.Delete(k))
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBTreeCacheWrapWriteDiscard(t *testing.T) {
	base := MemStore()
	k, v := []byte("top"), []byte("hat")
	k2, v2 := []byte("bow"), []byte("tie")
	require.NoError(t, base.Set(k, v))

	// Discarded writes are invisible in the base.
	cache := base.CacheWrap()
	require.NoError(t, cache.Set(k2, v2))
	got, err := cache.Get(k2)
	require.NoError(t, err)
	assert.Equal(t, v2, got)
	cache.Discard()
	got, err = base.Get(k2)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Written writes show up in the base, including deletes.
	cache = base.CacheWrap()
	require.NoError(t, cache.Set(k2, v2))
	require.NoError(t, cache.Delete(k))
	require.NoError(t, cache.Write())

	got, err = base.Get(k2)
	require.NoError(t, err)
	assert.Equal(t, v2, got)
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBTreeCacheConflicts(t *testing.T) {
	k, v := []byte("fuzzy"), []byte("bear")
	k2, v2 := []byte("fuzzy"), []byte("trooper")

	base := MemStore()
	require.NoError(t, base.Set(k, v))

	// The cache shadows the base value until discarded.
	cache := base.CacheWrap()
	require.NoError(t, cache.Set(k2, v2))
	got, err := cache.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v2, got)

	cache.Discard()
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

// iterAll reads the whole iterator and releases it.
func iterAll(t testing.TB, it Iterator) []Model {
	t.Helper()
	var res []Model
	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		require.NoError(t, err)
		res = append(res, Model{Key: key, Value: value})
	}
	it.Release()
	return res
}

func TestBTreeCacheIterator(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte("a"), []byte("1")))
	require.NoError(t, base.Set([]byte("c"), []byte("3")))
	require.NoError(t, base.Set([]byte("e"), []byte("5")))

	cache := base.CacheWrap()
	// New key between existing ones.
	require.NoError(t, cache.Set([]byte("b"), []byte("2")))
	// Overwrite of a base key.
	require.NoError(t, cache.Set([]byte("c"), []byte("33")))
	// Delete of a base key.
	require.NoError(t, cache.Delete([]byte("e")))

	it, err := cache.Iterator(nil, nil)
	require.NoError(t, err)
	models := iterAll(t, it)

	require.Len(t, models, 3)
	assert.Equal(t, []byte("a"), models[0].Key)
	assert.Equal(t, []byte("1"), models[0].Value)
	assert.Equal(t, []byte("b"), models[1].Key)
	assert.Equal(t, []byte("2"), models[1].Value)
	assert.Equal(t, []byte("c"), models[2].Key)
	assert.Equal(t, []byte("33"), models[2].Value)
}

func TestBTreeCacheReverseIterator(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte("a"), []byte("1")))
	require.NoError(t, base.Set([]byte("c"), []byte("3")))

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("b"), []byte("2")))

	it, err := cache.ReverseIterator(nil, nil)
	require.NoError(t, err)
	models := iterAll(t, it)

	require.Len(t, models, 3)
	assert.Equal(t, []byte("c"), models[0].Key)
	assert.Equal(t, []byte("b"), models[1].Key)
	assert.Equal(t, []byte("a"), models[2].Key)
}

func TestBTreeCacheIteratorRange(t *testing.T) {
	base := MemStore()
	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"}} {
		require.NoError(t, base.Set([]byte(kv[0]), []byte(kv[1])))
	}

	it, err := base.Iterator([]byte("b"), []byte("d"))
	require.NoError(t, err)
	models := iterAll(t, it)

	require.Len(t, models, 2)
	assert.Equal(t, []byte("b"), models[0].Key)
	assert.Equal(t, []byte("c"), models[1].Key)
}
