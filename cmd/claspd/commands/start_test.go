package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/clasptest/assert"
	claspd "github.com/clasp-io/clasp/cmd/claspd/app"
	claspserver "github.com/clasp-io/clasp/cmd/claspd/server"
	"github.com/clasp-io/clasp/coin"
	abciserver "github.com/clasp-io/clasp/commands/server"
	"github.com/clasp-io/clasp/tmtest"
	"github.com/clasp-io/clasp/x/htlc"
)

func TestStartStandAlone(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping ABCI stand-alone test")
	}

	home := setupConfig(t)
	defer os.RemoveAll(home)

	logger := log.NewNopLogger()
	err := abciserver.InitCmd(claspd.GenInitOptions, logger, home, initArgs())
	assert.Nil(t, err)

	// set up app and start up
	args := []string{"-bind", "localhost:11222"}
	runStart := func() error {
		return abciserver.StartCmd(claspd.GenerateApp, logger, home, args)
	}
	err = runOrTimeout(runStart, 2*time.Second)
	assert.Nil(t, err)
}

func TestDaemonServesSwaps(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping HTTP daemon test")
	}

	home := setupConfig(t)
	defer os.RemoveAll(home)

	alice := claspd.DevCaller("alice")
	bob := claspd.DevCaller("bob")

	logger := log.NewNopLogger()
	err := abciserver.InitCmd(claspd.GenInitOptions, logger, home, []string{"CLP", alice.Address().String()})
	assert.Nil(t, err)

	go func() {
		// Serves for the rest of the test binary lifetime.
		_ = claspserver.StartCmd(logger, home, []string{"-bind", "localhost:11123"})
	}()

	base := "http://localhost:11123"
	waitDaemon(t, base+"/info", 5*time.Second)

	// Lock native funds over the wire and read the swap back.
	lock := &htlc.LockMsg{
		Depositor:    alice.Address(),
		SecretHash:   htlc.HashSecret([]byte("32 bytes of a not so secret seed")),
		Recipient:    bob.Address(),
		Expiry:       clasp.AsUnixTime(time.Now().Add(time.Hour)),
		NativeAmount: coin.NewCoinp(11, "CLP"),
	}
	body, err := claspd.EncodeJSONTx(&claspd.Tx{Msg: lock, Caller: alice})
	assert.Nil(t, err)

	resp, err := http.Post(base+"/tx", "application/json", bytes.NewReader(body))
	assert.Nil(t, err)
	defer resp.Body.Close()
	payload, err := ioutil.ReadAll(resp.Body)
	assert.Nil(t, err)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lock not accepted: %d %s", resp.StatusCode, payload)
	}
	var result struct {
		Height int64  `json:"height"`
		Data   string `json:"data"`
	}
	assert.Nil(t, json.Unmarshal(payload, &result))
	if result.Data == "" {
		t.Fatal("no swap identifier returned")
	}

	resp, err = http.Get(fmt.Sprintf("%s/swaps/%s", base, result.Data))
	assert.Nil(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var swap htlc.Swap
	assert.Nil(t, json.NewDecoder(resp.Body).Decode(&swap))
	assert.Equal(t, int64(11), swap.Amount)
	assert.Equal(t, alice.Address(), swap.Depositor)
}

func TestStartWithTendermint(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Tendermint integration test")
	}
	tmpath, err := exec.LookPath("tendermint")
	if err != nil {
		if os.Getenv("FORCE_TM_TEST") != "1" {
			t.Skip("Tendermint binary not found. Set FORCE_TM_TEST=1 to fail this test.")
		}
		t.Fatal("Tendermint binary not found. Do not set FORCE_TM_TEST=1 to skip this test.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
	defer cancel()

	home := setupConfig(t)
	defer os.RemoveAll(home)

	// Let tendermint write its keys and config first, InitCmd only
	// fills in the application state afterwards.
	if out, err := exec.Command(tmpath, "init", "--home", home).CombinedOutput(); err != nil {
		t.Fatalf("tendermint init: %s %s", err, out)
	}

	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "test-cmd")
	err = abciserver.InitCmd(claspd.GenInitOptions, logger, home, initArgs())
	assert.Nil(t, err)

	defer tmtest.RunTendermint(ctx, t, home)()

	done := make(chan error, 1)
	go func() {
		args := []string{"-bind", "localhost:26658"}
		done <- abciserver.StartCmd(claspd.GenerateApp, logger, home, args)
	}()

	select {
	case <-ctx.Done():
		t.Logf("context cancelled before application finished")
	case err := <-done:
		if err != nil {
			t.Fatalf("application failed: %s", err)
		}
	}
}

func setupConfig(t *testing.T) string {
	t.Helper()

	home, err := ioutil.TempDir("", "claspd-commands-test")
	if err != nil {
		t.Fatalf("cannot create home directory: %s", err)
	}
	return home
}

func initArgs() []string {
	return []string{"CLP", claspd.DevCaller("alice").Address().String()}
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

func waitDaemon(t *testing.T, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("daemon did not come up: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
