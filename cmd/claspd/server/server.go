// Package server exposes the swap engine over a JSON HTTP API. The
// application runs embedded, every accepted transaction is finalized
// in a block of its own and queries read the committed state.
package server

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tendermint/tendermint/libs/log"

	claspd "github.com/clasp-io/clasp/cmd/claspd/app"
)

// Handler returns the full route table of the daemon API.
func Handler(node *Node) http.Handler {
	rt := http.NewServeMux()
	rt.Handle("/tx", &TxHandler{Node: node})
	rt.Handle("/swaps", &SwapsHandler{Node: node})
	rt.Handle("/swaps/", &SwapDetailHandler{Node: node})
	rt.Handle("/events", &EventsHandler{Node: node})
	rt.Handle("/preview", &PreviewHandler{Node: node})
	rt.Handle("/wallets/", &WalletHandler{Node: node})
	rt.Handle("/balances/", &TokenBalancesHandler{Node: node})
	rt.Handle("/tokens", &TokensHandler{Node: node})
	rt.Handle("/info", &InfoHandler{Node: node})
	rt.Handle("/", &DefaultHandler{})
	return rt
}

// StartCmd loads the application from the home directory, initializes
// it from the genesis file if needed, and serves the JSON API. It
// blocks until the listener fails.
//
// The bind address defaults to the CLASPD_BIND environment variable.
func StartCmd(logger log.Logger, home string, args []string) error {
	bind := env("CLASPD_BIND", ":8000")
	var debug bool

	startFlags := flag.NewFlagSet("start", flag.ExitOnError)
	startFlags.StringVar(&bind, "bind", bind, "address the JSON API listens on")
	startFlags.BoolVar(&debug, "debug", false, "call stack returned on error")
	if err := startFlags.Parse(args); err != nil {
		return err
	}

	application, err := claspd.GenerateApp(home, logger, debug)
	if err != nil {
		return err
	}
	node := NewNode(application, logger)
	if err := node.InitChain(filepath.Join(home, "config", "genesis.json")); err != nil {
		return err
	}

	logger.Info("Starting JSON API", "bind", bind)
	if err := http.ListenAndServe(bind, Handler(node)); err != nil {
		return fmt.Errorf("http server: %s", err)
	}
	return nil
}

func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}
