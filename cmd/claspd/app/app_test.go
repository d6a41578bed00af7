package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/app"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/x/bridge"
	"github.com/clasp-io/clasp/x/cash"
	"github.com/clasp-io/clasp/x/htlc"
	"github.com/clasp-io/clasp/x/token"
)

const chainID = "test-clasp-app"

// alice and bob are the deterministic dev identities from examples.go.

func TestAppNativeSwap(t *testing.T) {
	myApp := testApp(t)
	t0 := time.Now().UTC()

	secret := []byte("32 bytes of a not so secret seed")
	lock := &LockTxFixture{
		Secret: secret,
		Amount: coin.NewCoinp(500, "CLP"),
		Expiry: clasp.AsUnixTime(t0.Add(time.Hour)),
	}
	dres := deliver(t, myApp, 1, t0, lock.Tx())

	swapID := dres.Data
	wantID := htlc.SwapID(alice.Address(), htlc.HashSecret(secret), htlc.BindingHash(bob.Address()))
	assert.Equal(t, wantID, swapID)
	assertTagged(t, dres, swapID)

	var swap htlc.Swap
	queryOne(t, myApp, "/swaps", swapID, &swap)
	assert.Equal(t, htlc.NativeKind, swap.Kind)
	assert.Equal(t, int64(500), swap.Amount)
	assert.Equal(t, alice.Address(), swap.Depositor)
	assert.Equal(t, bob.Address(), swap.Recipient)
	assert.False(t, swap.Claimed)

	// The escrow took the funds from the depositor.
	var wallet cash.Set
	queryOne(t, myApp, "/wallets", htlc.SwapAddr(swapID), &wallet)
	assert.Equal(t, coin.Coins{coin.NewCoinp(500, "CLP")}, wallet.Coins)
	queryOne(t, myApp, "/wallets", alice.Address(), &wallet)
	assert.Equal(t, coin.Coins{coin.NewCoinp(123456289, "CLP")}, wallet.Coins)

	// Bob claims before the deadline, naming the swap.
	claim := &Tx{
		Msg:    &htlc.ClaimMsg{SwapID: swapID, Secret: secret},
		Caller: bob,
	}
	deliver(t, myApp, 2, t0.Add(30*time.Minute), claim)

	queryOne(t, myApp, "/swaps", swapID, &swap)
	assert.True(t, swap.Claimed)
	queryOne(t, myApp, "/wallets", bob.Address(), &wallet)
	assert.Equal(t, coin.Coins{coin.NewCoinp(500, "CLP")}, wallet.Coins)

	// The swap is terminal, a second claim is turned down.
	log := reject(t, myApp, 3, t0.Add(31*time.Minute), claim)
	assert.Contains(t, log, "finalized")

	// The log discloses the secret with the claim entry.
	events := queryEvents(t, myApp)
	require.Equal(t, 2, len(events))
	require.NotNil(t, events[0].Locked)
	assert.Equal(t, swapID, events[0].Locked.SwapID)
	require.NotNil(t, events[1].Claimed)
	assert.Equal(t, secret, events[1].Claimed.Secret)
}

func TestAppRefundAfterExpiry(t *testing.T) {
	myApp := testApp(t)
	t0 := time.Now().UTC()

	secret := []byte("32 bytes of a not so secret seed")
	secretHash := htlc.HashSecret(secret)
	lock := &LockTxFixture{
		Secret: secret,
		Amount: coin.NewCoinp(300, "CLP"),
		Expiry: clasp.AsUnixTime(t0.Add(100 * time.Second)),
	}
	dres := deliver(t, myApp, 1, t0, lock.Tx())
	swapID := dres.Data

	// Too early, the deadline has not passed.
	refund := &Tx{
		Msg:    &htlc.RefundMsg{SecretHash: secretHash},
		Caller: alice,
	}
	log := reject(t, myApp, 2, t0.Add(50*time.Second), refund)
	assert.Contains(t, log, "not expired")

	// Too late for the claim, the deadline has passed.
	claim := &Tx{
		Msg:    &htlc.ClaimMsg{SwapID: swapID, Secret: secret},
		Caller: bob,
	}
	log = reject(t, myApp, 3, t0.Add(200*time.Second), claim)
	assert.Contains(t, log, "expired")

	// Only the depositor is refunded.
	badRefund := &Tx{
		Msg:    &htlc.RefundMsg{SwapID: swapID},
		Caller: bob,
	}
	log = reject(t, myApp, 4, t0.Add(200*time.Second), badRefund)
	assert.Contains(t, log, "depositor")

	// The refund resolves the swap from the secret hash and the caller.
	deliver(t, myApp, 5, t0.Add(200*time.Second), refund)

	var wallet cash.Set
	queryOne(t, myApp, "/wallets", alice.Address(), &wallet)
	assert.Equal(t, coin.Coins{coin.NewCoinp(123456789, "CLP")}, wallet.Coins)

	var swap htlc.Swap
	queryOne(t, myApp, "/swaps", swapID, &swap)
	assert.True(t, swap.Claimed)
}

func TestAppTokenSwap(t *testing.T) {
	myApp := testApp(t)
	t0 := time.Now().UTC()

	// The bridge operator mints wrapped units for alice.
	mint := &Tx{
		Msg: &bridge.MintMsg{
			Ticker:      "WBTC",
			Destination: alice.Address(),
			Amount:      1000,
			Ref:         []byte("deposit-tx-1"),
		},
		Caller: alice,
	}
	deliver(t, myApp, 1, t0, mint)

	var balance token.Balance
	queryOne(t, myApp, "/tokenbalances", balanceQueryKey(alice.Address(), "WBTC"), &balance)
	assert.Equal(t, int64(1000), balance.Amount)

	// The engine pulls escrowed tokens against an allowance.
	approve := &Tx{
		Msg: &token.ApproveMsg{
			Ticker:  "WBTC",
			Owner:   alice.Address(),
			Spender: htlc.ModuleAddr(),
			Amount:  600,
		},
		Caller: alice,
	}
	deliver(t, myApp, 2, t0, approve)

	secret := []byte("32 bytes of a not so secret seed")
	lock := &Tx{
		Msg: &htlc.LockMsg{
			Depositor:  alice.Address(),
			SecretHash: htlc.HashSecret(secret),
			Recipient:  bob.Address(),
			Expiry:     clasp.AsUnixTime(t0.Add(time.Hour)),
			Token:      "WBTC",
			Amount:     600,
		},
		Caller: alice,
	}
	dres := deliver(t, myApp, 3, t0, lock)
	swapID := dres.Data

	var swap htlc.Swap
	queryOne(t, myApp, "/swaps", swapID, &swap)
	assert.Equal(t, htlc.TokenKind, swap.Kind)
	assert.Equal(t, "WBTC", swap.Ticker)

	queryOne(t, myApp, "/tokenbalances", balanceQueryKey(alice.Address(), "WBTC"), &balance)
	assert.Equal(t, int64(400), balance.Amount)
	queryOne(t, myApp, "/tokenbalances", balanceQueryKey(htlc.SwapAddr(swapID), "WBTC"), &balance)
	assert.Equal(t, int64(600), balance.Amount)

	// The claim resolves the swap from the secret and the caller alone.
	claim := &Tx{
		Msg:    &htlc.ClaimMsg{Secret: secret},
		Caller: bob,
	}
	deliver(t, myApp, 4, t0.Add(time.Minute), claim)

	queryOne(t, myApp, "/tokenbalances", balanceQueryKey(bob.Address(), "WBTC"), &balance)
	assert.Equal(t, int64(600), balance.Amount)
	queryOne(t, myApp, "/swaps", swapID, &swap)
	assert.True(t, swap.Claimed)
}

func TestAppAnonymousTxRejected(t *testing.T) {
	myApp := testApp(t)
	t0 := time.Now().UTC()

	secret := []byte("32 bytes of a not so secret seed")
	lock := &Tx{
		Msg: &htlc.LockMsg{
			Depositor:    alice.Address(),
			SecretHash:   htlc.HashSecret(secret),
			Recipient:    bob.Address(),
			Expiry:       clasp.AsUnixTime(t0.Add(time.Hour)),
			NativeAmount: coin.NewCoinp(10, "CLP"),
		},
	}
	log := reject(t, myApp, 1, t0, lock)
	assert.Contains(t, log, "unauthorized")
}

// LockTxFixture builds the common native lock transaction of the tests,
// alice locking for bob.
type LockTxFixture struct {
	Secret []byte
	Amount *coin.Coin
	Expiry clasp.UnixTime
}

func (f *LockTxFixture) Tx() *Tx {
	return &Tx{
		Msg: &htlc.LockMsg{
			Depositor:    alice.Address(),
			SecretHash:   htlc.HashSecret(f.Secret),
			Recipient:    bob.Address(),
			Expiry:       f.Expiry,
			NativeAmount: f.Amount,
		},
		Caller: alice,
	}
}

// testApp returns an application backed by an in memory store,
// initialized with the development genesis. Alice owns 123456789 CLP
// and operates the bridge.
func testApp(t *testing.T) app.BaseApp {
	t.Helper()

	abciApp, err := GenerateApp("", log.NewNopLogger(), true)
	require.NoError(t, err)
	myApp := abciApp.(app.BaseApp)

	opts, err := GenInitOptions([]string{"CLP", alice.Address().String()})
	require.NoError(t, err)
	myApp.InitChain(abci.RequestInitChain{
		ChainId:       chainID,
		AppStateBytes: opts,
	})
	myApp.Commit()
	require.Equal(t, chainID, myApp.GetChainID())
	return myApp
}

// deliver runs a whole block cycle around a single transaction,
// requiring check and delivery to pass.
func deliver(t *testing.T, myApp app.BaseApp, height int64, blockTime time.Time, tx *Tx) abci.ResponseDeliverTx {
	t.Helper()

	raw, err := tx.Marshal()
	require.NoError(t, err)

	header := abci.Header{ChainID: chainID, Height: height, Time: blockTime}
	myApp.BeginBlock(abci.RequestBeginBlock{Header: header})
	chres := myApp.CheckTx(raw)
	require.Equal(t, uint32(0), chres.Code, chres.Log)
	dres := myApp.DeliverTx(raw)
	require.Equal(t, uint32(0), dres.Code, dres.Log)
	myApp.EndBlock(abci.RequestEndBlock{Height: height})
	cres := myApp.Commit()
	require.NotEmpty(t, cres.Data)
	return dres
}

// reject runs a block cycle expecting the check to turn the transaction
// down, and returns the rejection log.
func reject(t *testing.T, myApp app.BaseApp, height int64, blockTime time.Time, tx *Tx) string {
	t.Helper()

	raw, err := tx.Marshal()
	require.NoError(t, err)

	header := abci.Header{ChainID: chainID, Height: height, Time: blockTime}
	myApp.BeginBlock(abci.RequestBeginBlock{Header: header})
	chres := myApp.CheckTx(raw)
	require.NotEqual(t, uint32(0), chres.Code, "the transaction must be rejected")
	myApp.EndBlock(abci.RequestEndBlock{Height: height})
	myApp.Commit()
	return chres.Log
}

// queryOne reads a single value from the committed state.
func queryOne(t *testing.T, myApp app.BaseApp, path string, key []byte, obj clasp.Persistent) {
	t.Helper()

	qres := myApp.Query(abci.RequestQuery{Path: path, Data: key})
	require.Equal(t, uint32(0), qres.Code, qres.Log)
	require.NotEmpty(t, qres.Value, "no value under %s %X", path, key)
	require.NoError(t, app.UnmarshalOneResult(qres.Value, obj))
}

// queryEvents returns the whole swap log in sequence order.
func queryEvents(t *testing.T, myApp app.BaseApp) []htlc.Event {
	t.Helper()

	qres := myApp.Query(abci.RequestQuery{Path: "/swapevents?range", Data: nil})
	require.Equal(t, uint32(0), qres.Code, qres.Log)
	var values app.ResultSet
	require.NoError(t, values.Unmarshal(qres.Value))

	events := make([]htlc.Event, len(values.Results))
	for i, raw := range values.Results {
		require.NoError(t, events[i].Unmarshal(raw))
	}
	return events
}

func assertTagged(t *testing.T, dres abci.ResponseDeliverTx, swapID []byte) {
	t.Helper()

	for _, tag := range dres.Tags {
		if string(tag.Key) == "swap-id" {
			assert.Equal(t, fmt.Sprintf("%X", swapID), string(tag.Value))
			return
		}
	}
	t.Error("delivery is not tagged with the swap id")
}

func balanceQueryKey(addr clasp.Address, ticker string) []byte {
	key := make([]byte, 0, len(addr)+len(ticker))
	key = append(key, addr...)
	key = append(key, ticker...)
	return key
}
