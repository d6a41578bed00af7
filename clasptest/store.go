package clasptest

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/store/iavl"
)

// CommitKVStore returns a filesystem backed store together with its
// cleanup function. Prefer it over MemStore when a test must run on
// the same storage engine as production.
func CommitKVStore(t testing.TB) (db clasp.CommitKVStore, cleanup func()) {
	dbpath, err := ioutil.TempDir("", t.Name())
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}

	db = iavl.NewCommitStore(dbpath, "db")
	return db, func() { os.RemoveAll(dbpath) }
}
