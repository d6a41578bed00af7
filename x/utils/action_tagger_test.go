package utils_test

import (
	"context"
	"testing"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/app"
	"github.com/clasp-io/clasp/clasptest"
	"github.com/clasp-io/clasp/clasptest/assert"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/store"
	"github.com/clasp-io/clasp/x/utils"
	"github.com/tendermint/tendermint/libs/common"
)

func TestActionTagger(t *testing.T) {
	tag := func(key, value string) common.KVPair {
		return common.KVPair{Key: []byte(key), Value: []byte(value)}
	}
	lockTx := &clasptest.Tx{Msg: &clasptest.Msg{RoutePath: "htlc/lock"}}

	cases := map[string]struct {
		handler  *clasptest.Handler
		tx       clasp.Tx
		wantErr  *errors.Error
		wantTags []common.KVPair
	}{
		"message path is recorded as the action": {
			handler:  &clasptest.Handler{},
			tx:       lockTx,
			wantTags: []common.KVPair{tag(utils.ActionKey, "htlc/lock")},
		},
		"a handler failure is passed through untagged": {
			handler: &clasptest.Handler{DeliverErr: errors.ErrHuman},
			tx:      lockTx,
			wantErr: errors.ErrHuman,
		},
		"handler tags are kept and the action appended": {
			handler: &clasptest.Handler{
				DeliverResult: clasp.DeliverResult{
					Tags: []common.KVPair{tag(utils.ActionKey, "random")},
				},
			},
			tx: lockTx,
			wantTags: []common.KVPair{
				tag(utils.ActionKey, "random"),
				tag(utils.ActionKey, "htlc/lock"),
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			stack := app.ChainDecorators(utils.NewActionTagger()).WithHandler(tc.handler)

			res, err := stack.Deliver(context.Background(), store.MemStore(), tc.tx)
			if tc.wantErr != nil {
				if !tc.wantErr.Is(err) {
					t.Fatalf("want %v, got %+v", tc.wantErr, err)
				}
				return
			}
			assert.Nil(t, err)

			assert.Equal(t, len(tc.wantTags), len(res.Tags))
			for i, want := range tc.wantTags {
				assert.Equal(t, string(want.Key), string(res.Tags[i].Key))
				assert.Equal(t, string(want.Value), string(res.Tags[i].Value))
			}
		})
	}
}
