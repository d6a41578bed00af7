package client

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/clasptest/assert"
	claspd "github.com/clasp-io/clasp/cmd/claspd/app"
	"github.com/clasp-io/clasp/cmd/claspd/server"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/x/htlc"
)

var (
	alice = claspd.DevCaller("alice")
	bob   = claspd.DevCaller("bob")
)

func TestClientSwapRoundTrip(t *testing.T) {
	cl, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()

	info, err := cl.Info(ctx)
	assert.Nil(t, err)
	assert.Equal(t, "test-clasp", info.ChainID)
	assert.Equal(t, int64(1), info.Height)

	secret := []byte("32 bytes of a not so secret seed")
	secretHash := htlc.HashSecret(secret)

	// The counter party can compute the identifier before anything is
	// submitted and find the very same swap under it afterwards.
	preview, err := cl.PreviewSwapID(ctx, alice.Address(), secretHash, bob.Address(), nil)
	assert.Nil(t, err)

	locked, err := cl.Lock(ctx, alice, &htlc.LockMsg{
		Depositor:    alice.Address(),
		SecretHash:   secretHash,
		Recipient:    bob.Address(),
		Expiry:       clasp.AsUnixTime(time.Now().Add(time.Hour)),
		NativeAmount: coin.NewCoinp(75, "CLP"),
	})
	assert.Nil(t, err)
	swapID := []byte(locked.Data)
	assert.Equal(t, []byte(preview.SwapID), swapID)

	swap, err := cl.Swap(ctx, swapID)
	assert.Nil(t, err)
	assert.Equal(t, int64(75), swap.Amount)
	assert.Equal(t, "CLP", swap.Ticker)
	assert.Equal(t, alice.Address(), swap.Depositor)

	swaps, err := cl.Swaps(ctx, alice.Address(), nil)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(swaps))
	assert.Equal(t, swapID, []byte(swaps[0].ID))

	coins, err := cl.Wallet(ctx, preview.Address)
	assert.Nil(t, err)
	assert.Equal(t, coin.Coins{coin.NewCoinp(75, "CLP")}, coins)

	// Revealing the secret is all the counter party needs.
	_, err = cl.Claim(ctx, bob, &htlc.ClaimMsg{Secret: secret})
	assert.Nil(t, err)

	coins, err = cl.Wallet(ctx, bob.Address())
	assert.Nil(t, err)
	assert.Equal(t, coin.Coins{coin.NewCoinp(75, "CLP")}, coins)

	events, err := cl.Events(ctx, 0)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(events))
	assert.Equal(t, uint64(1), events[0].Sequence)
	if events[0].Event.Locked == nil {
		t.Fatal("expected a lock entry first")
	}
	assert.Equal(t, swapID, events[0].Event.Locked.SwapID)

	events, err = cl.Events(ctx, 1)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(events))
	if events[0].Event.Claimed == nil {
		t.Fatal("expected a claim entry")
	}
	assert.Equal(t, secret, events[0].Event.Claimed.Secret)

	tokens, err := cl.Tokens(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(tokens))
	assert.Equal(t, "WBTC", tokens[0].Ticker)

	balances, err := cl.TokenBalances(ctx, alice.Address())
	assert.Nil(t, err)
	assert.Equal(t, 0, len(balances))
}

func TestClientErrorsAreCoded(t *testing.T) {
	cl, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()

	// A secret that no lock committed to cannot be finalized.
	_, err := cl.Claim(ctx, bob, &htlc.ClaimMsg{
		Secret: []byte("the wrong thirty two byte secret"),
	})
	assert.IsErr(t, errors.ErrState, err)

	_, err = cl.Swap(ctx, []byte{1, 2, 3, 4})
	assert.IsErr(t, errors.ErrNotFound, err)

	_, err = cl.PreviewSwapID(ctx, alice.Address(), []byte{1}, bob.Address(), []byte{2})
	assert.IsErr(t, errors.ErrInput, err)
	_, err = cl.PreviewSwapID(ctx, alice.Address(), []byte{1}, nil, nil)
	assert.IsErr(t, errors.ErrInput, err)
}

func newTestClient(t *testing.T) (*Client, func()) {
	t.Helper()

	application, err := claspd.GenerateApp("", log.NewNopLogger(), true)
	assert.Nil(t, err)

	opts, err := claspd.GenInitOptions([]string{"CLP", alice.Address().String()})
	assert.Nil(t, err)

	dir, err := ioutil.TempDir("", "claspd-client-test")
	assert.Nil(t, err)

	genFile := filepath.Join(dir, "genesis.json")
	genesis := fmt.Sprintf(`{"chain_id": "test-clasp", "app_state": %s}`, opts)
	if err := ioutil.WriteFile(genFile, []byte(genesis), 0600); err != nil {
		os.RemoveAll(dir)
		t.Fatalf("cannot write genesis: %s", err)
	}

	node := server.NewNode(application, log.NewNopLogger())
	if err := node.InitChain(genFile); err != nil {
		os.RemoveAll(dir)
		t.Fatalf("cannot initialize chain: %s", err)
	}

	srv := httptest.NewServer(server.Handler(node))
	cleanup := func() {
		srv.Close()
		os.RemoveAll(dir)
	}
	return NewClient(srv.URL), cleanup
}
