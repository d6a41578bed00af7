package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/app"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
)

// DevCaller returns the development caller condition for the given
// name. It carries no secret, any transport that can declare conditions
// can act as this identity. Meant for local test networks only.
func DevCaller(name string) clasp.Condition {
	return clasp.NewCondition("caller", "seat", []byte(name))
}

// GenInitOptions will produce some basic options for one rich account,
// to use for dev mode.
//
// When called with no arguments it uses the native ticker "CLP" and
// funds the "admin" development seat, printing its condition so the
// account can be used right away.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "CLP"
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", ticker)
		}
	}

	var addr string
	if len(args) > 1 {
		addr = args[1]
	} else {
		// if no address is provided, use the admin dev seat and
		// print out how to act as it
		admin := DevCaller("admin")
		addr = admin.Address().String()
		fmt.Printf("dev caller: %s\naddress:    %s\n", admin, addr)
	}

	opts := fmt.Sprintf(`
          {
            "cash": [
              {
                "address": "%s",
                "coins": [
                  {"ticker": "%s", "amount": 123456789}
                ]
              }
            ],
            "token": {
              "tokens": [
                {"ticker": "WBTC", "name": "Wrapped BTC"}
              ],
              "balances": []
            },
            "conf": {
              "bridge": {
                "owner": "%s",
                "operator": "%s"
              },
              "htlc": {
                "owner": "%s",
                "native_ticker": "%s",
                "policy": "account",
                "claim_gate": "open",
                "refund_gate": "open"
              }
            }
          }
	`, addr, ticker, addr, addr, addr, ticker)
	return []byte(opts), nil
}

// GenerateApp is used to create a stub for the server start command.
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "claspd.db")
	}

	stack := Stack(nil)
	application, err := Application("claspd", stack, TxDecoder, dbPath, debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(Initializer())

	// set the logger and return
	application.WithLogger(logger)
	return application, nil
}

// InlineApp constructs the application around an already loaded store.
// Used by the retry command to re-run a block on a database snapshot.
func InlineApp(kv clasp.CommitKVStore, logger log.Logger, debug bool) abci.Application {
	ctx := context.Background()
	store := app.NewStoreApp("claspd", kv, QueryRouter(), ctx)
	store.WithInit(Initializer())
	store.WithLogger(logger)
	return app.NewBaseApp(store, TxDecoder, Stack(nil), debug)
}
