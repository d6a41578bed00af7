package server

import (
	"flag"

	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/clasp-io/clasp/errors"
)

const flagDebug = "debug"

// AppGenerator builds the application from its home directory once the
// command line is parsed.
type AppGenerator func(home string, logger log.Logger, debug bool) (abci.Application, error)

// StartCmd runs the application behind an ABCI socket server that a
// tendermint node can drive. It blocks until a termination signal.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	fl := flag.NewFlagSet("abci", flag.ExitOnError)
	bind := fl.String("bind", "tcp://localhost:46658", "address the ABCI server listens on")
	debug := fl.Bool(flagDebug, false, "call stack returned on error")
	if err := fl.Parse(args); err != nil {
		return err
	}

	app, err := gen(home, logger, *debug)
	if err != nil {
		return err
	}

	svr, err := server.NewServer(*bind, "socket", app)
	if err != nil {
		return errors.Wrap(err, "cannot create ABCI server")
	}
	svr.SetLogger(logger.With("module", "abci-server"))

	logger.Info("Serving ABCI", "bind", *bind)
	if err := svr.Start(); err != nil {
		return err
	}
	cmn.TrapSignal(logger, func() {
		if err := svr.Stop(); err != nil {
			logger.Error("Stopping server", "err", err)
		}
	})

	// TrapSignal only installs the handler, blocking is on us.
	select {}
}
