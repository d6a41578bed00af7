package server

import (
	"bytes"
	"flag"
	"fmt"
	"io/ioutil"

	"github.com/tendermint/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/types"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	iavlstore "github.com/clasp-io/clasp/store/iavl"
)

// InlineAppGenerator builds the application around an already opened
// store instead of a home directory, so a command can replay against a
// tree it manages itself.
type InlineAppGenerator func(clasp.CommitKVStore, log.Logger, bool) abci.Application

// RetryCmd loads the application state and a dumped block, verifies
// they are at the same height, then rolls the state back one version
// and re-delivers the block, printing the app hash it arrives at.
// With -error it keeps replaying until the hash diverges from the
// stored one, bounded by -max attempts. This is the tool of choice
// when hunting non-determinism.
func RetryCmd(makeApp InlineAppGenerator, logger log.Logger, home string, args []string) error {
	if len(args) < 2 {
		return errors.Wrap(errors.ErrInput,
			"usage: cmd retry <path to abci.db> <path to block.json> [-debug] [-error] [-max=N]")
	}
	fl := flag.NewFlagSet("retry", flag.ExitOnError)
	debug := fl.Bool(flagDebug, false, "call stack returned on error")
	untilError := fl.Bool("error", false, "replay until the app hash diverges")
	maxTries := fl.Int("max", 10, "maximum number of replays with -error")
	if err := fl.Parse(args[2:]); err != nil {
		return err
	}

	block, err := loadBlockDump(args[1])
	if err != nil {
		return err
	}
	tree, version, err := loadTree(args[0])
	if err != nil {
		return errors.Wrap(err, "cannot read abci state")
	}
	if version != block.Header.Height {
		return errors.Wrapf(errors.ErrState,
			"height mismatch: block=%d abci store=%d", block.Header.Height, version)
	}

	fmt.Printf("Replaying height %d, stored hash %X\n", block.Header.Height, tree.Hash())
	for try := 0; ; try++ {
		same, err := replayBlock(makeApp, logger, *debug, tree, block)
		if err != nil {
			return err
		}
		if !same {
			fmt.Println("Hash diverged")
			return nil
		}
		if !*untilError || try >= *maxTries {
			return nil
		}
	}
}

func loadBlockDump(path string) (*types.Block, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var block *types.Block
	if err := cdc.UnmarshalJSON(raw, &block); err != nil {
		return nil, errors.Wrap(err, "cannot decode block dump")
	}
	return block, nil
}

func loadTree(path string) (*iavl.MutableTree, int64, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, 0, err
	}
	tree := iavl.NewMutableTree(db, 10000)
	version, err := tree.Load()
	if version == 0 {
		return nil, 0, errors.Wrap(errors.ErrState, "iavl tree is empty")
	}
	return tree, version, err
}

// replayBlock rolls the tree back below the block and delivers every
// transaction again, reporting whether the recomputed app hash matches
// the one the tree held before the rollback.
func replayBlock(makeApp InlineAppGenerator, logger log.Logger, debug bool, tree *iavl.MutableTree, block *types.Block) (bool, error) {
	want := tree.Hash()

	if _, err := tree.LoadVersionForOverwriting(block.Header.Height - 1); err != nil {
		return false, errors.Wrapf(err, "cannot roll back to %d", block.Header.Height-1)
	}

	app := makeApp(iavlstore.NewCommitStoreFromTree(tree), logger, debug)
	app.BeginBlock(abci.RequestBeginBlock{
		Hash:   block.Header.Hash(),
		Header: abciHeader(block.Header),
	})
	for i, tx := range block.Txs {
		resp := app.DeliverTx(tx)
		fmt.Printf("  tx %d: code=%d log=%q\n", i, resp.Code, resp.Log)
	}
	app.EndBlock(abci.RequestEndBlock{Height: block.Header.Height})

	got := app.Commit().Data
	fmt.Printf("Recomputed hash %X\n", got)
	return bytes.Equal(want, got), nil
}

// abciHeader is a mechanical mapping between the tendermint and the
// ABCI header types.
func abciHeader(h types.Header) abci.Header {
	last := h.LastBlockID
	return abci.Header{
		Version: abci.Version{
			Block: uint64(h.Version.Block),
			App:   uint64(h.Version.App),
		},
		ChainID:  h.ChainID,
		Height:   h.Height,
		Time:     h.Time,
		NumTxs:   h.NumTxs,
		TotalTxs: h.TotalTxs,
		LastBlockId: abci.BlockID{
			Hash: last.Hash,
			PartsHeader: abci.PartSetHeader{
				Total: int32(last.PartsHeader.Total),
				Hash:  last.PartsHeader.Hash,
			},
		},
		AppHash:            h.AppHash,
		ConsensusHash:      h.ConsensusHash,
		DataHash:           h.DataHash,
		EvidenceHash:       h.EvidenceHash,
		LastCommitHash:     h.LastCommitHash,
		LastResultsHash:    h.LastResultsHash,
		NextValidatorsHash: h.NextValidatorsHash,
		ValidatorsHash:     h.ValidatorsHash,
		ProposerAddress:    h.ProposerAddress,
	}
}
