package store

import (
	"bytes"
	"sync"

	"github.com/google/btree"

	"github.com/clasp-io/clasp/errors"
)

// btreeIter walks over a range of the cache btree. The walk runs in its own
// goroutine and is consumed one item at a time.
type btreeIter struct {
	data    btree.Item
	hasMore bool
	read    <-chan btree.Item
	stop    chan<- struct{}
	once    sync.Once
}

// source marks where the current item comes from.
type source int32

const (
	us source = iota
	parent
	both
	none
)

func ascendBtree(bt *btree.BTree, start, end []byte) *btreeIter {
	return walkBtree(bt, start, end, false)
}

func descendBtree(bt *btree.BTree, start, end []byte) *btreeIter {
	return walkBtree(bt, start, end, true)
}

// walkBtree streams one range of the tree through a channel. The
// google/btree API only offers callback-style walks, so the walk runs
// in a goroutine and the iterator pulls from it item by item. The stop
// channel is buffered so close never blocks a walk that already ended.
func walkBtree(bt *btree.BTree, start, end []byte, reverse bool) *btreeIter {
	read := make(chan btree.Item)
	stop := make(chan struct{}, 1)
	iter := &btreeIter{
		read: read,
		stop: stop,
	}

	emit := func(item btree.Item) bool {
		select {
		case read <- item:
			return true
		case <-stop:
			close(read)
			return false
		}
	}

	go func() {
		switch {
		case reverse && start == nil && end == nil:
			bt.Descend(emit)
		case reverse && start == nil:
			bt.DescendLessOrEqual(bkeyLess{end}, emit)
		case reverse && end == nil:
			bt.DescendGreaterThan(bkeyLess{start}, emit)
		case reverse:
			bt.DescendRange(bkeyLess{end}, bkeyLess{start}, emit)
		case start == nil && end == nil:
			bt.Ascend(emit)
		case start == nil:
			bt.AscendLessThan(bkey{end}, emit)
		case end == nil:
			bt.AscendGreaterOrEqual(bkey{start}, emit)
		default:
			bt.AscendRange(bkey{start}, bkey{end}, emit)
		}
		close(read)
	}()

	iter.next()
	return iter
}

func (b *btreeIter) wrap(parent Iterator) *itemIter {
	return &itemIter{
		wrap:   b,
		parent: parent,
	}
}

func (b *btreeIter) wrapReverse(parent Iterator) *itemIter {
	return &itemIter{
		wrap:    b,
		parent:  parent,
		reverse: true,
	}
}

func (b *btreeIter) next() {
	b.data, b.hasMore = <-b.read
}

func (b *btreeIter) close() {
	b.once.Do(func() {
		b.stop <- struct{}{}
	})
}

// get requires this is valid, gets what we are pointing at.
func (b *btreeIter) get() keyer {
	return b.data.(keyer)
}

func (b *btreeIter) valid() bool {
	return b.hasMore
}

// itemIter combines the btree cache iterator with the backing store
// iterator, resolving overwrites and hiding deleted entries. As the parent
// only exposes an advancing cursor, its head element is buffered here.
type itemIter struct {
	wrap    *btreeIter
	parent  Iterator
	reverse bool

	primed      bool
	parentDone  bool
	parentKey   []byte
	parentValue []byte
}

var _ Iterator = (*itemIter)(nil)

// Next returns the next key-value pair in the merged iteration order, or
// ErrIteratorDone when both sources are exhausted.
func (i *itemIter) Next() ([]byte, []byte, error) {
	for {
		if err := i.prime(); err != nil {
			return nil, nil, err
		}

		switch i.firstKey() {
		case none:
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "iterator done")
		case us:
			item := i.wrap.get()
			i.wrap.next()
			if _, deleted := item.(deletedItem); deleted {
				// Nothing in the parent to hide, keep walking.
				continue
			}
			set := item.(setItem)
			return set.Key(), set.value, nil
		case both:
			item := i.wrap.get()
			i.wrap.next()
			// The cache entry shadows the parent one.
			i.primed = false
			if _, deleted := item.(deletedItem); deleted {
				continue
			}
			set := item.(setItem)
			return set.Key(), set.value, nil
		case parent:
			key, value := i.parentKey, i.parentValue
			i.primed = false
			return key, value, nil
		}
	}
}

// Release releases the iterator and its parent.
func (i *itemIter) Release() {
	if i.parent != nil {
		i.parent.Release()
	}
	i.wrap.close()
}

// prime loads the next parent entry into the buffer, if not already there.
func (i *itemIter) prime() error {
	if i.primed || i.parentDone || i.parent == nil {
		return nil
	}
	key, value, err := i.parent.Next()
	switch {
	case err == nil:
		i.parentKey, i.parentValue = key, value
		i.primed = true
	case errors.ErrIteratorDone.Is(err):
		i.parentDone = true
	default:
		return err
	}
	return nil
}

// firstKey selects the source with the lowest key, if any. It must be called
// after prime.
func (i *itemIter) firstKey() source {
	parentValid := i.primed
	usValid := i.wrap.valid()

	if !parentValid {
		if !usValid {
			return none
		}
		return us
	}
	if !usValid {
		return parent
	}

	// Both are valid, compare the keys. A reverse iteration serves the
	// highest key first.
	cmp := bytes.Compare(i.parentKey, i.wrap.get().Key())
	if i.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}
