package cash

import (
	"context"
	"testing"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/clasptest"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/store"
)

func TestSendHandler(t *testing.T) {
	perm1 := clasptest.NewCondition()
	perm2 := clasptest.NewCondition()
	addr1 := perm1.Address()
	addr2 := perm2.Address()

	cases := map[string]struct {
		signers        []clasp.Condition
		initCoins      coin.Coins
		msg            clasp.Msg
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
		wantSrc        coin.Coins
		wantDest       coin.Coins
	}{
		"successful transfer": {
			signers:   []clasp.Condition{perm1},
			initCoins: coin.Coins{coin.NewCoinp(667, "FOO")},
			msg: &SendMsg{
				Source:      addr1,
				Destination: addr2,
				Amount:      coin.NewCoinp(250, "FOO"),
			},
			wantSrc:  coin.Coins{coin.NewCoinp(417, "FOO")},
			wantDest: coin.Coins{coin.NewCoinp(250, "FOO")},
		},
		"message of an unexpected type": {
			signers:        []clasp.Condition{perm1},
			msg:            &clasptest.Msg{RoutePath: "cash/send"},
			wantCheckErr:   errors.ErrType,
			wantDeliverErr: errors.ErrType,
		},
		"broken message content": {
			signers: []clasp.Condition{perm1},
			msg: &SendMsg{
				Source:      addr1,
				Destination: addr2,
				Amount:      coin.NewCoinp(-2, "FOO"),
			},
			wantCheckErr:   errors.ErrAmount,
			wantDeliverErr: errors.ErrAmount,
		},
		"missing source signature": {
			signers:   []clasp.Condition{perm2},
			initCoins: coin.Coins{coin.NewCoinp(667, "FOO")},
			msg: &SendMsg{
				Source:      addr1,
				Destination: addr2,
				Amount:      coin.NewCoinp(250, "FOO"),
			},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
			wantSrc:        coin.Coins{coin.NewCoinp(667, "FOO")},
		},
		"insufficient funds": {
			signers:   []clasp.Condition{perm1},
			initCoins: coin.Coins{coin.NewCoinp(100, "FOO")},
			msg: &SendMsg{
				Source:      addr1,
				Destination: addr2,
				Amount:      coin.NewCoinp(250, "FOO"),
			},
			wantDeliverErr: errors.ErrAmount,
			wantSrc:        coin.Coins{coin.NewCoinp(100, "FOO")},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			auth := &clasptest.Auth{Signers: tc.signers}
			h := NewSendHandler(auth, NewController(NewBucket()))

			kv := store.MemStore()
			if tc.initCoins != nil {
				seedWallet(t, kv, addr1, tc.initCoins...)
			}

			ctx := context.Background()
			tx := &clasptest.Tx{Msg: tc.msg}

			res, err := h.Check(ctx, kv, tx)
			if !tc.wantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			if err == nil && res.GasAllocated != sendTxCost {
				t.Fatalf("unexpected gas allocation: %d", res.GasAllocated)
			}

			if _, err := h.Deliver(ctx, kv, tx); !tc.wantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}

			if tc.wantSrc != nil && !coinsOf(t, kv, addr1).Equals(tc.wantSrc) {
				t.Fatalf("unexpected source balance: %v", coinsOf(t, kv, addr1))
			}
			if tc.wantDest != nil && !coinsOf(t, kv, addr2).Equals(tc.wantDest) {
				t.Fatalf("unexpected destination balance: %v", coinsOf(t, kv, addr2))
			}
		})
	}
}
