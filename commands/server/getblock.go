package server

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/blockchain"
	dbm "github.com/tendermint/tendermint/libs/db"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"

	"github.com/clasp-io/clasp/errors"
)

var cdc = amino.NewCodec()

func init() {
	ctypes.RegisterAmino(cdc)
}

// GetBlockCmd prints one block from a blockstore.db as JSON on stdout,
// the latest one unless -height points at an earlier one. The dump can
// be fed back into the retry command.
func GetBlockCmd(args []string) error {
	if len(args) == 0 {
		return errors.Wrap(errors.ErrInput, "usage: cmd getblock <path to blockstore.db> [-height=H]")
	}
	fl := flag.NewFlagSet("getblock", flag.ExitOnError)
	height := fl.Int64("height", 0, "height of the block to extract (default latest)")
	if err := fl.Parse(args[1:]); err != nil {
		return err
	}

	db, err := openDB(args[0])
	if err != nil {
		return err
	}
	store := blockchain.NewBlockStore(db)
	at := *height
	if at == 0 {
		at = store.Height()
	}
	block := store.LoadBlock(at)
	if block == nil {
		return errors.Wrapf(errors.ErrNotFound, "no block at height %d", at)
	}

	raw, err := cdc.MarshalJSONIndent(block, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

// openDB opens an existing goleveldb directory, given as the usual
// <name>.db path tendermint writes.
func openDB(path string) (dbm.DB, error) {
	path = filepath.Clean(path)
	if !strings.HasSuffix(path, ".db") {
		return nil, errors.Wrapf(errors.ErrInput, "%q is not a .db directory", path)
	}
	dir, name := filepath.Split(strings.TrimSuffix(path, ".db"))
	if name == "" {
		return nil, errors.Wrapf(errors.ErrInput, "cannot split database path %q", path)
	}
	return dbm.NewGoLevelDB(name, filepath.Clean(dir))
}
