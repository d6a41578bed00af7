package app

import (
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/commands"
	"github.com/clasp-io/clasp/x/cash"
	"github.com/clasp-io/clasp/x/htlc"
	"github.com/clasp-io/clasp/x/token"
)

// deterministic identities so the generated fixtures are reproducible
var (
	alice = DevCaller("alice")
	bob   = DevCaller("bob")
)

// Examples generates some example structs to dump out with testgen.
// Client authors can verify their encoding against these fixtures.
func Examples() []commands.Example {
	wallet := &cash.Set{
		Coins: coin.Coins{
			{Ticker: "CLP", Amount: 50000},
		},
	}

	clp := &coin.Coin{Ticker: "CLP", Amount: 250}

	wbtc := &token.Token{Name: "Wrapped BTC"}

	secret := make([]byte, 32)
	copy(secret, "not a very random secret")
	secretHash := htlc.HashSecret(secret)

	swap := &htlc.Swap{
		Kind:       htlc.NativeKind,
		Ticker:     "CLP",
		Amount:     250,
		Depositor:  alice.Address(),
		Recipient:  bob.Address(),
		SecretHash: secretHash,
		Expiry:     1700000000,
	}

	lock := &htlc.LockMsg{
		Depositor:    alice.Address(),
		SecretHash:   secretHash,
		Recipient:    bob.Address(),
		Expiry:       1700000000,
		NativeAmount: coin.NewCoinp(250, "CLP"),
	}

	claim := &htlc.ClaimMsg{
		Secret: secret,
	}

	send := &cash.SendMsg{
		Amount:      coin.NewCoinp(100, "CLP"),
		Source:      alice.Address(),
		Destination: bob.Address(),
		Memo:        "test payment",
	}

	lockTx := &Tx{Msg: lock, Caller: alice}
	claimTx := &Tx{Msg: claim, Caller: bob}

	return []commands.Example{
		{Filename: "wallet", Obj: wallet},
		{Filename: "coin", Obj: clp},
		{Filename: "token", Obj: wbtc},
		{Filename: "swap", Obj: swap},
		{Filename: "msg_send", Obj: send},
		{Filename: "msg_lock", Obj: lock},
		{Filename: "msg_claim", Obj: claim},
		{Filename: "tx_lock", Obj: lockTx},
		{Filename: "tx_claim", Obj: claimTx},
	}
}
