package server

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/clasp-io/clasp/errors"
)

// GenOptions builds the application specific app_state for the genesis
// file from the remaining command line arguments.
type GenOptions func(args []string) (json.RawMessage, error)

// InitCmd will initialize the genesis file under the given home
// directory, filling in the application state.
//
// When no genesis file exists yet, a fresh one with a random chain id
// is written first, so a development node can start without running
// tendermint init. An existing file, eg. one written by tendermint
// init, only gets its app_state replaced.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	genFile := filepath.Join(home, "config", "genesis.json")
	if fileExists(genFile) {
		logger.Info("Found genesis file", "path", genFile)
	} else {
		if err := writeGenesisSkeleton(genFile); err != nil {
			return errors.Wrap(err, "write genesis skeleton")
		}
		logger.Info("Generated genesis file", "path", genFile)
	}

	// no app_state, leave like tendermint
	if gen == nil {
		return nil
	}

	options, err := gen(args)
	if err != nil {
		return err
	}

	return addGenesisOptions(genFile, options)
}

func fileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// writeGenesisSkeleton creates a minimal genesis document with a random
// chain id. Consensus specific fields are left for tendermint to
// manage.
func writeGenesisSkeleton(genFile string) error {
	if err := os.MkdirAll(filepath.Dir(genFile), 0755); err != nil {
		return err
	}
	doc := struct {
		GenesisTime time.Time `json:"genesis_time"`
		ChainID     string    `json:"chain_id"`
	}{
		GenesisTime: time.Now().UTC(),
		ChainID:     fmt.Sprintf("test-chain-%v", cmn.RandStr(6)),
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(genFile, out, 0600)
}

// GenesisDoc keeps the genesis file as raw JSON fields. Tendermint owns
// the document layout and only the app_state entry is ours to touch.
type GenesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage) error {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "read genesis file")
	}
	var doc GenesisDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors.Wrap(err, "unmarshal genesis file")
	}

	doc["app_state"] = options

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "serialize genesis file")
	}
	return ioutil.WriteFile(filename, out, 0600)
}
