package store

import (
	"bytes"

	"github.com/google/btree"

	"github.com/clasp-io/clasp/errors"
)

// DefaultFreeListSize caps the shared free list of btree nodes.
const DefaultFreeListSize = btree.DefaultFreeListSize

// BTreeCacheable upgrades any KVStore to a CacheableKVStore by
// wrapping writes in a btree overlay.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap opens an overlay whose writes land in this store on Write
// and vanish on Discard.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns a throwaway in-memory store for tests, an overlay
// over nothing.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

// BTreeCacheWrap shadows a backing store with a btree of pending sets
// and deletes. Reads consult the btree first; Write flushes the
// pending operations through the batch.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap builds the overlay. The backing store is read
// only here; every write goes through the batch. Pass an existing
// free list to share btree nodes between wraps, or nil for a fresh
// one.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap stacks another overlay on this one, sharing the free
// list.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a batch collecting operations to apply to this
// overlay. Atomicity comes from the overlay itself, so the batch is
// non-atomic.
func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes the pending operations into the backing store and
// invalidates the overlay.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all pending operations and returns the btree nodes to
// the free list.
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
}

// Set records an overwrite, visible to reads immediately.
func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(newSetItem(key, value))
	return b.batch.Set(key, value)
}

// Delete records a deletion, hiding the key from reads immediately.
func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(newDeletedItem(key))
	return b.batch.Delete(key)
}

// Get serves pending writes from the btree and everything else from
// the backing store.
func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch t := res.(type) {
		case setItem:
			return t.value, nil
		case deletedItem:
			return nil, nil
		default:
			return nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Get(key)
}

// Has is Get without loading the value.
func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch res.(type) {
		case setItem:
			return true, nil
		case deletedItem:
			return false, nil
		default:
			return false, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Has(key)
}

// Iterator walks [start, end) ascending, merging pending writes with
// the backing store and hiding pending deletes.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parentIter, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return ascendBtree(b.bt, start, end).wrap(parentIter), nil
}

// ReverseIterator is Iterator in descending order.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parentIter, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return descendBtree(b.bt, start, end).wrapReverse(parentIter), nil
}

// Every item stored in the btree implements keyer, so items compare
// by key regardless of their kind.
type keyer interface {
	Key() []byte
}

// bkey is the bare key item, used for lookups and embedded in the
// stored item kinds.
type bkey struct {
	key []byte
}

var (
	_ keyer      = bkey{}
	_ btree.Item = bkey{}
)

func (k bkey) Key() []byte { return k.key }

// Less orders items by key. Panics on an item that is not a keyer.
func (k bkey) Less(item btree.Item) bool {
	return bytes.Compare(k.key, item.(keyer).Key()) < 0
}

type deletedItem struct {
	bkey
}

type setItem struct {
	bkey
	value []byte
}

func newDeletedItem(key []byte) deletedItem {
	return deletedItem{bkey{key}}
}

func newSetItem(key, value []byte) setItem {
	return setItem{bkey{key}, value}
}

// bkeyLess sorts just below the same key's bkey, which turns the
// btree's inclusive range bounds into the exclusive ones the iterator
// contract wants.
type bkeyLess struct {
	key []byte
}

var (
	_ keyer      = bkeyLess{}
	_ btree.Item = bkeyLess{}
)

func (k bkeyLess) Key() []byte { return k.key }

// Less orders bkeyLess before an equal key. Panics on an item that is
// not a keyer.
func (k bkeyLess) Less(item btree.Item) bool {
	return bytes.Compare(k.key, item.(keyer).Key()) <= 0
}
