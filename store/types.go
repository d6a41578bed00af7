package store

import (
	"github.com/clasp-io/clasp"
)

// Aliases for the storage types declared in the root package, so code
// in and around this package can use the short names.

type ReadOnlyKVStore = clasp.ReadOnlyKVStore
type KVStore = clasp.KVStore
type SetDeleter = clasp.SetDeleter
type Batch = clasp.Batch
type Iterator = clasp.Iterator
type CacheableKVStore = clasp.CacheableKVStore
type KVCacheWrap = clasp.KVCacheWrap
type CommitKVStore = clasp.CommitKVStore
type CommitID = clasp.CommitID
type Model = clasp.Model
