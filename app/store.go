package app

import (
	"encoding/json"
	"fmt"
	"strings"

	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// StoreApp owns the committed state and the ABCI lifecycle around it:
// Info, Query, InitChain, BeginBlock and Commit. BaseApp embeds it and
// adds transaction processing on top.
//
// Errors on the block lifecycle steps are handled as panics: those
// requests take no user input, there is no way to report a failure
// gracefully, and the node cannot keep running on a half-applied block.
type StoreApp struct {
	logger log.Logger

	// name is reported by abci.Info
	name string

	// committed state plus the check and deliver caches
	store *CommitStore

	// seeds the state from a genesis document, used exactly once
	initializer clasp.Initializer

	queryRouter clasp.QueryRouter

	// chainID is read from the store on start and written once by
	// parseAppState on the very first InitChain
	chainID string

	// baseContext holds what is valid for the application lifetime
	// (chain id, logger); blockContext adds the current block's
	// height and time and is replaced on every BeginBlock
	baseContext  clasp.Context
	blockContext clasp.Context
}

// NewStoreApp loads the application state from the given store.
//
// Panics when the store content cannot be read.
func NewStoreApp(name string, store clasp.CommitKVStore,
	queryRouter clasp.QueryRouter, baseContext clasp.Context) *StoreApp {
	s := &StoreApp{
		name:        name,
		store:       NewCommitStore(store),
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s = s.WithLogger(log.NewNopLogger())

	s.chainID = mustLoadChainID(s.DeliverStore())
	if s.chainID != "" {
		s.baseContext = clasp.WithChainID(s.baseContext, s.chainID)
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.blockContext = clasp.WithHeight(s.baseContext, info.Version)
	return s
}

// GetChainID returns the chain id the store was initialized with.
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit sets the genesis initializer run on InitChain.
func (s *StoreApp) WithInit(init clasp.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger replaces the application logger, also on the base
// context, and returns the app for chaining during assembly.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.baseContext = clasp.WithLogger(s.baseContext, logger)
	s.logger = logger
	return s
}

// Logger returns the application base logger.
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext exposes the current block's context.
func (s *StoreApp) BlockContext() clasp.Context {
	return s.blockContext
}

// DeliverStore returns the cache DeliverTx operates on.
func (s *StoreApp) DeliverStore() clasp.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the cache CheckTx operates on.
func (s *StoreApp) CheckStore() clasp.CacheableKVStore {
	return s.store.CheckStore()
}

// parseAppState seeds the state from the genesis app_state. InitChain
// calls it on the very first chain start, never on restarts.
func (s *StoreApp) parseAppState(data []byte, chainID string, init clasp.Initializer) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "appState previously loaded for chain: %s", s.chainID)
	}

	if len(data) == 0 {
		return errors.Wrap(errors.ErrInput, "app_state not set in genesis.json, initialize the application before launching the chain")
	}

	var appState clasp.Options
	if err := json.Unmarshal(data, &appState); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot parse app_state: %s", err)
	}

	if err := s.storeChainID(chainID); err != nil {
		return err
	}

	return init.FromGenesis(appState, s.DeliverStore())
}

// storeChainID persists the chain id and stamps it on the context.
func (s *StoreApp) storeChainID(chainID string) error {
	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = clasp.WithChainID(s.baseContext, s.chainID)
	return nil
}

//---- abci.Application

// Info reports the committed height and app hash so the node knows
// where to resume.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}

	s.logger.Info("Info synced",
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))

	return abci.ResponseInfo{
		Data:             s.name,
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

// SetOption is a no-op.
func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

// Query reads from the last committed state. The request path picks
// the handler ("/", "/<bucket>" or "/<bucket>/<index>") and may carry
// a modifier after a question mark, eg. "?prefix". Response Key and
// Value are parallel serialized ResultSets holding 0 to N matches.
func (s *StoreApp) Query(reqQuery abci.RequestQuery) (resQuery abci.ResponseQuery) {
	path, mod := splitPath(reqQuery.Path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		return queryError(errors.Wrapf(errors.ErrNotFound, "no query handler for %q", reqQuery.Path))
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		return queryError(err)
	}
	resQuery.Height = info.Version

	// Queries only read: wrap the last committed state in a throwaway
	// cache so any misbehaving handler cannot touch it.
	db := s.store.committed.CacheWrap()

	models, err := qh.Query(db, mod, reqQuery.Data)
	if err != nil {
		return queryError(err)
	}

	resQuery.Key, err = ResultsFromKeys(models).Marshal()
	if err != nil {
		return queryError(err)
	}
	resQuery.Value, err = ResultsFromValues(models).Marshal()
	if err != nil {
		return queryError(err)
	}

	return resQuery
}

// splitPath cuts the modifier (everything behind the question mark)
// off the query path.
func splitPath(path string) (string, string) {
	if i := strings.Index(path, "?"); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

func queryError(err error) abci.ResponseQuery {
	return abci.ResponseQuery{
		Log:  err.Error(),
		Code: errors.Code(err),
	}
}

// Commit writes the deliver cache into a new store version and
// reports its hash.
func (s *StoreApp) Commit() (res abci.ResponseCommit) {
	commitID, err := s.store.Commit()
	if err != nil {
		panic(err)
	}

	s.logger.Debug("Commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)

	return abci.ResponseCommit{Data: commitID.Hash}
}

// InitChain seeds the chain state from the genesis app state. It runs
// exactly once per store.
func (s *StoreApp) InitChain(req abci.RequestInitChain) (res abci.ResponseInitChain) {
	if err := s.parseAppState(req.AppStateBytes, req.ChainId, s.initializer); err != nil {
		// see the panic note on the StoreApp type
		panic(err)
	}

	return abci.ResponseInitChain{}
}

// BeginBlock resets the block context to the new height and time.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) (res abci.ResponseBeginBlock) {
	ctx := clasp.WithHeight(s.baseContext, req.Header.GetHeight())
	ctx = clasp.WithBlockTime(ctx, req.Header.Time)
	s.blockContext = ctx

	return
}

// EndBlock is a no-op, the engine manages no validator set.
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) (res abci.ResponseEndBlock) {
	return
}
