package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/clasp-io/clasp"
	claspd "github.com/clasp-io/clasp/cmd/claspd/app"
	"github.com/clasp-io/clasp/cmd/claspd/server"
	"github.com/clasp-io/clasp/commands"
	abciserver "github.com/clasp-io/clasp/commands/server"
)

var (
	flagHome = "home"
	varHome  *string
)

func init() {
	defaultHome := os.Getenv("CLASPD_HOME")
	if defaultHome == "" {
		defaultHome = filepath.Join(os.ExpandEnv("$HOME"), ".claspd")
	}
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("claspd")
	fmt.Println("          Cross ledger atomic swap engine")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Initialize app options in genesis file")
	fmt.Println("start     Run the JSON API daemon")
	fmt.Println("abci      Run the abci server for a tendermint node")
	fmt.Println("getblock  Extract a block from blockchain.db")
	fmt.Println("retry     Run last block again to ensure it produces same result")
	fmt.Println("validate  Validate genesis files without storing anything")
	fmt.Println("testgen   Write example fixtures for client development")
	fmt.Println("version   Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$CLASPD_HOME" or "$HOME/.claspd")`)
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).With("module", "clasp")
	cmd, rest := flag.Arg(0), flag.Args()[1:]

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = abciserver.InitCmd(claspd.GenInitOptions, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(logger, *varHome, rest)
	case "abci":
		err = abciserver.StartCmd(claspd.GenerateApp, logger, *varHome, rest)
	case "getblock":
		err = abciserver.GetBlockCmd(rest)
	case "retry":
		err = abciserver.RetryCmd(claspd.InlineApp, logger, *varHome, rest)
	case "validate":
		err = abciserver.ValidateGenesis(claspd.Initializer(), rest)
	case "testgen":
		err = commands.TestGenCmd(claspd.Examples(), rest)
	case "version":
		fmt.Println(clasp.Version)
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
