package cash

import (
	"strings"
	"testing"

	"github.com/clasp-io/clasp/clasptest"
	"github.com/clasp-io/clasp/clasptest/assert"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
)

func TestValidateSendMsg(t *testing.T) {
	addr1 := clasptest.RandomAddr(t)
	addr2 := clasptest.RandomAddr(t)

	cases := map[string]struct {
		msg      *SendMsg
		wantErrs map[string]*errors.Error
	}{
		"correct": {
			msg: &SendMsg{
				Source:      addr1,
				Destination: addr2,
				Amount:      coin.NewCoinp(10, "FOO"),
				Memo:        "some memo message",
				Ref:         []byte("some reference"),
			},
			wantErrs: map[string]*errors.Error{
				"Source":      nil,
				"Destination": nil,
				"Amount":      nil,
				"Memo":        nil,
				"Ref":         nil,
			},
		},
		"missing source": {
			msg: &SendMsg{
				Destination: addr2,
				Amount:      coin.NewCoinp(10, "FOO"),
			},
			wantErrs: map[string]*errors.Error{
				"Source":      errors.ErrInput,
				"Destination": nil,
				"Amount":      nil,
			},
		},
		"missing destination": {
			msg: &SendMsg{
				Source: addr1,
				Amount: coin.NewCoinp(10, "FOO"),
			},
			wantErrs: map[string]*errors.Error{
				"Source":      nil,
				"Destination": errors.ErrInput,
				"Amount":      nil,
			},
		},
		"missing amount": {
			msg: &SendMsg{
				Source:      addr1,
				Destination: addr2,
			},
			wantErrs: map[string]*errors.Error{
				"Source":      nil,
				"Destination": nil,
				"Amount":      errors.ErrAmount,
			},
		},
		"zero amount": {
			msg: &SendMsg{
				Source:      addr1,
				Destination: addr2,
				Amount:      coin.NewCoinp(0, "FOO"),
			},
			wantErrs: map[string]*errors.Error{
				"Amount": errors.ErrAmount,
			},
		},
		"negative amount": {
			msg: &SendMsg{
				Source:      addr1,
				Destination: addr2,
				Amount:      coin.NewCoinp(-10, "FOO"),
			},
			wantErrs: map[string]*errors.Error{
				"Amount": errors.ErrAmount,
			},
		},
		"invalid ticker": {
			msg: &SendMsg{
				Source:      addr1,
				Destination: addr2,
				Amount:      coin.NewCoinp(10, "x"),
			},
			wantErrs: map[string]*errors.Error{
				"Amount": errors.ErrCurrency,
			},
		},
		"memo too long": {
			msg: &SendMsg{
				Source:      addr1,
				Destination: addr2,
				Amount:      coin.NewCoinp(10, "FOO"),
				Memo:        strings.Repeat("a", maxMemoSize+1),
			},
			wantErrs: map[string]*errors.Error{
				"Memo": errors.ErrInput,
			},
		},
		"ref too long": {
			msg: &SendMsg{
				Source:      addr1,
				Destination: addr2,
				Amount:      coin.NewCoinp(10, "FOO"),
				Ref:         []byte(strings.Repeat("a", maxRefSize+1)),
			},
			wantErrs: map[string]*errors.Error{
				"Ref": errors.ErrInput,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			for field, wantErr := range tc.wantErrs {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}
