package app

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// CommitStore wraps a CommitKVStore and keeps two independent cache
// layers on top of it, one fed by Deliver and one by Check.
type CommitStore struct {
	committed clasp.CommitKVStore
	deliver   clasp.KVCacheWrap
	check     clasp.KVCacheWrap
}

// NewCommitStore loads the latest committed state and prepares fresh
// deliver and check caches. It panics when the store cannot be loaded
// as there is nothing useful to do without state.
func NewCommitStore(store clasp.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}
}

// CommitInfo returns the height and hash of the latest commit.
func (cs *CommitStore) CommitInfo() (clasp.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit flushes the deliver cache into the backing store and writes
// the result to disk. Whatever accumulated in the check cache is
// thrown away and both caches start over from the committed state.
func (cs *CommitStore) Commit() (clasp.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return clasp.CommitID{}, err
	}
	cs.check.Discard()

	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore exposes the cache layer used during the check phase.
func (cs *CommitStore) CheckStore() clasp.CacheableKVStore {
	return cs.check
}

// DeliverStore exposes the cache layer used during the deliver phase.
func (cs *CommitStore) DeliverStore() clasp.CacheableKVStore {
	return cs.deliver
}

// chainIDKey lives under the "_cl:" prefix reserved for engine
// internal data.
const chainIDKey = "_cl:chainID"

// mustLoadChainID returns the stored chain id, or an empty string when
// none was saved yet. Database failure panics.
func mustLoadChainID(kv clasp.KVStore) string {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		panic(err)
	}
	return string(v)
}

// saveChainID persists the chain id once. A second write, or an
// invalid name, is rejected.
func saveChainID(kv clasp.KVStore, chainID string) error {
	if !clasp.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrImmutable, "chain id cannot change after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
