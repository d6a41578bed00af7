package server

import (
	"fmt"
	"testing"
	"time"

	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/clasp-io/clasp/clasptest/assert"
)

func TestStartStandAlone(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping ABCI stand-alone test")
	}

	home, cleanup := tempHome(t)
	defer cleanup()

	noApp := func(string, log.Logger, bool) (abci.Application, error) {
		return abci.NewBaseApplication(), nil
	}
	start := func() error {
		return StartCmd(noApp, log.NewNopLogger(), home, []string{"-bind", "localhost:11122"})
	}

	// StartCmd blocks until the server dies, so surviving the timeout
	// is the success case.
	assert.Nil(t, runOrTimeout(start, 2*time.Second))
}

// runOrTimeout reports nil when cmd is still running after the timeout
// and the command's error (never nil) when it returns early.
func runOrTimeout(cmd func() error, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		if err := cmd(); err != nil {
			done <- err
			return
		}
		done <- fmt.Errorf("start died for unknown reasons")
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return nil
	}
}
