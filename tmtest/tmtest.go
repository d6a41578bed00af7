/*
Package tmtest provides helpers for integration tests that drive a
tendermint node or an application binary as an external process.
*/
package tmtest

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/clasp-io/clasp/clasptest/assert"
)

// TestReporter is the subset of testing.TB these helpers need.
type TestReporter interface {
	assert.Tester
	Skipf(string, ...interface{})
	Logf(string, ...interface{})
}

// RunTendermint starts a tendermint node over the given home directory.
// The returned cleanup function stops the process and blocks until it
// is gone.
//
// When the tendermint binary is not installed the test is skipped,
// unless FORCE_TM_TEST=1 is set, which turns the missing binary into a
// failure. Set TM_DEBUG=1 to pass the process output through.
func RunTendermint(ctx context.Context, t TestReporter, home string) (cleanup func()) {
	t.Helper()
	return runBinary(ctx, t, "tendermint", []string{"node", "--home", home})
}

// RunApp starts the application binary over a home directory prepared
// by its init command. Lookup, skipping and cleanup behave exactly as
// in RunTendermint.
func RunApp(ctx context.Context, t TestReporter, appName string, home string) (cleanup func()) {
	t.Helper()
	return runBinary(ctx, t, appName, []string{"-home", home, "start"})
}

func runBinary(ctx context.Context, t TestReporter, name string, args []string) (cleanup func()) {
	t.Helper()

	path, err := exec.LookPath(name)
	if err != nil {
		if os.Getenv("FORCE_TM_TEST") == "1" {
			t.Fatalf("%s binary not found. Unset FORCE_TM_TEST to skip this test.", name)
		} else {
			t.Skipf("%s binary not found. Set FORCE_TM_TEST=1 to fail this test.", name)
		}
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if os.Getenv("TM_DEBUG") != "" {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("%s process failed: %s", name, err)
	}

	// Give the process time to set itself up.
	time.Sleep(2 * time.Second)
	t.Logf("Running %s pid=%d", path, cmd.Process.Pid)

	done := make(chan struct{})
	var once sync.Once
	cleanup = func() {
		once.Do(func() {
			t.Logf("%s cleanup called", name)
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			close(done)
		})
		// Block until the process is gone.
		<-done
	}

	// Kill the process as well when the context expires first.
	go func() {
		select {
		case <-ctx.Done():
			cleanup()
		case <-done:
		}
	}()

	return cleanup
}
