/*
Package app links together all the various components
to construct the claspd app.
*/
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/app"
	"github.com/clasp-io/clasp/store/iavl"
	"github.com/clasp-io/clasp/x"
	"github.com/clasp-io/clasp/x/bridge"
	"github.com/clasp-io/clasp/x/cash"
	"github.com/clasp-io/clasp/x/htlc"
	"github.com/clasp-io/clasp/x/token"
	"github.com/clasp-io/clasp/x/utils"
)

// Authenticator returns the authentication used by all handlers. The
// caller condition is declared by the transaction envelope and placed
// on the context by the caller decorator.
func Authenticator() x.Authenticator {
	return Authenticate{}
}

// Chain returns a chain of decorators, to handle caller authentication,
// logging, recovery and savepoints.
func Chain(authFn x.Authenticator) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		NewCallerDecorator(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		// on DeliverTx, either every write of an operation lands or
		// none does
		utils.NewSavepoint().OnDeliver(),
		utils.NewActionTagger(),
	)
}

// Router returns a router dispatching to all message handlers of the
// engine. The issuer, when not nil, is the only address allowed to
// register new tokens.
func Router(authFn x.Authenticator, issuer clasp.Address) *app.Router {
	r := app.NewRouter()
	bank := cash.NewController(cash.NewBucket())
	tokens := token.NewController()
	cash.RegisterRoutes(r, authFn, bank)
	token.RegisterRoutes(r, authFn, issuer, tokens)
	bridge.RegisterRoutes(r, authFn, tokens)
	htlc.RegisterRoutes(r, authFn, bank, tokens)
	return r
}

// QueryRouter returns a query router, allowing access to "/wallets",
// "/tokens", "/tokenbalances", "/allowances", "/swaps", "/swapevents",
// "/swapid" and the raw store under "/".
func QueryRouter() clasp.QueryRouter {
	r := clasp.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		token.RegisterQuery,
		htlc.RegisterQuery,
		app.RegisterQuery,
	)
	return r
}

// Initializer returns the combined genesis initializer of all
// extensions.
func Initializer() clasp.Initializer {
	return app.ChainInitializers(
		cash.Initializer{},
		token.Initializer{},
		bridge.Initializer{},
		htlc.Initializer{},
	)
}

// Stack wires up a standard router with a standard decorator chain.
// This can be passed into BaseApp.
func Stack(issuer clasp.Address) clasp.Handler {
	authFn := Authenticator()
	return Chain(authFn).WithHandler(Router(authFn, issuer))
}

// Application constructs a basic ABCI application with the given
// arguments. If you are not sure what to use for the Handler, just use
// Stack().
func Application(name string, h clasp.Handler,
	tx clasp.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {

	ctx := context.Background()
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store := app.NewStoreApp(name, kv, QueryRouter(), ctx)
	base := app.NewBaseApp(store, tx, h, debug)
	return base, nil
}

// CommitKVStore returns an initialized KVStore that persists the data
// to the named path.
func CommitKVStore(dbPath string) (clasp.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database name: %s", path)
	}

	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}
