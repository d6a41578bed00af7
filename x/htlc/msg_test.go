package htlc

import (
	"bytes"
	"testing"

	"github.com/clasp-io/clasp/clasptest"
	"github.com/clasp-io/clasp/clasptest/assert"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
)

func TestValidateLockMsg(t *testing.T) {
	depositor := clasptest.RandomAddr(t)
	recipient := clasptest.RandomAddr(t)
	secretHash := HashSecret([]byte("quite a secret"))

	cases := map[string]struct {
		msg      *LockMsg
		wantErrs map[string]*errors.Error
	}{
		"correct native lock with a recipient": {
			msg: &LockMsg{
				Depositor:    depositor,
				SecretHash:   secretHash,
				Recipient:    recipient,
				Expiry:       1756000000,
				NativeAmount: coin.NewCoinp(100, "CLP"),
			},
			wantErrs: map[string]*errors.Error{
				"Depositor":    nil,
				"SecretHash":   nil,
				"Recipient":    nil,
				"Expiry":       nil,
				"NativeAmount": nil,
			},
		},
		"correct token lock with a binding": {
			msg: &LockMsg{
				Depositor:     depositor,
				SecretHash:    secretHash,
				Binding:       []byte("acc-on-the-other-chain"),
				Expiry:        1756000000,
				Token:         "WBTC",
				Amount:        5,
				DesiredTicker: "CLP",
				DesiredAmount: 1000,
			},
			wantErrs: map[string]*errors.Error{
				"Binding": nil,
				"Token":   nil,
				"Amount":  nil,
			},
		},
		"missing depositor": {
			msg: &LockMsg{
				SecretHash:   secretHash,
				Recipient:    recipient,
				Expiry:       1756000000,
				NativeAmount: coin.NewCoinp(100, "CLP"),
			},
			wantErrs: map[string]*errors.Error{
				"Depositor": errors.ErrInput,
			},
		},
		"short secret hash": {
			msg: &LockMsg{
				Depositor:    depositor,
				SecretHash:   []byte("too short"),
				Recipient:    recipient,
				Expiry:       1756000000,
				NativeAmount: coin.NewCoinp(100, "CLP"),
			},
			wantErrs: map[string]*errors.Error{
				"SecretHash": errors.ErrInput,
			},
		},
		"all zero secret hash": {
			msg: &LockMsg{
				Depositor:    depositor,
				SecretHash:   make([]byte, secretHashSize),
				Recipient:    recipient,
				Expiry:       1756000000,
				NativeAmount: coin.NewCoinp(100, "CLP"),
			},
			wantErrs: map[string]*errors.Error{
				"SecretHash": errors.ErrEmpty,
			},
		},
		"recipient and binding are exclusive": {
			msg: &LockMsg{
				Depositor:    depositor,
				SecretHash:   secretHash,
				Recipient:    recipient,
				Binding:      []byte("elsewhere"),
				Expiry:       1756000000,
				NativeAmount: coin.NewCoinp(100, "CLP"),
			},
			wantErrs: map[string]*errors.Error{
				"Binding": errors.ErrInput,
			},
		},
		"one of recipient and binding is required": {
			msg: &LockMsg{
				Depositor:    depositor,
				SecretHash:   secretHash,
				Expiry:       1756000000,
				NativeAmount: coin.NewCoinp(100, "CLP"),
			},
			wantErrs: map[string]*errors.Error{
				"Recipient": errors.ErrEmpty,
			},
		},
		"binding too long": {
			msg: &LockMsg{
				Depositor:    depositor,
				SecretHash:   secretHash,
				Binding:      bytes.Repeat([]byte("x"), maxBindingSize+1),
				Expiry:       1756000000,
				NativeAmount: coin.NewCoinp(100, "CLP"),
			},
			wantErrs: map[string]*errors.Error{
				"Binding": errors.ErrInput,
			},
		},
		"desired metadata requires a binding": {
			msg: &LockMsg{
				Depositor:     depositor,
				SecretHash:    secretHash,
				Recipient:     recipient,
				Expiry:        1756000000,
				NativeAmount:  coin.NewCoinp(100, "CLP"),
				DesiredTicker: "WBTC",
				DesiredAmount: 1,
			},
			wantErrs: map[string]*errors.Error{
				"DesiredTicker": errors.ErrInput,
			},
		},
		"desired metadata must come as a pair": {
			msg: &LockMsg{
				Depositor:     depositor,
				SecretHash:    secretHash,
				Binding:       []byte("elsewhere"),
				Expiry:        1756000000,
				NativeAmount:  coin.NewCoinp(100, "CLP"),
				DesiredTicker: "WBTC",
			},
			wantErrs: map[string]*errors.Error{
				"DesiredAmount": errors.ErrInput,
			},
		},
		"missing expiry": {
			msg: &LockMsg{
				Depositor:    depositor,
				SecretHash:   secretHash,
				Recipient:    recipient,
				NativeAmount: coin.NewCoinp(100, "CLP"),
			},
			wantErrs: map[string]*errors.Error{
				"Expiry": errors.ErrInput,
			},
		},
		"native and token amounts are exclusive": {
			msg: &LockMsg{
				Depositor:    depositor,
				SecretHash:   secretHash,
				Recipient:    recipient,
				Expiry:       1756000000,
				NativeAmount: coin.NewCoinp(100, "CLP"),
				Token:        "WBTC",
				Amount:       5,
			},
			wantErrs: map[string]*errors.Error{
				"Token": errors.ErrInput,
			},
		},
		"an amount is required": {
			msg: &LockMsg{
				Depositor:  depositor,
				SecretHash: secretHash,
				Recipient:  recipient,
				Expiry:     1756000000,
			},
			wantErrs: map[string]*errors.Error{
				"NativeAmount": errors.ErrEmpty,
			},
		},
		"negative native amount": {
			msg: &LockMsg{
				Depositor:    depositor,
				SecretHash:   secretHash,
				Recipient:    recipient,
				Expiry:       1756000000,
				NativeAmount: coin.NewCoinp(-1, "CLP"),
			},
			wantErrs: map[string]*errors.Error{
				"NativeAmount": errors.ErrAmount,
			},
		},
		"zero token amount": {
			msg: &LockMsg{
				Depositor:  depositor,
				SecretHash: secretHash,
				Recipient:  recipient,
				Expiry:     1756000000,
				Token:      "WBTC",
			},
			wantErrs: map[string]*errors.Error{
				"Amount": errors.ErrAmount,
			},
		},
		"broken token ticker": {
			msg: &LockMsg{
				Depositor:  depositor,
				SecretHash: secretHash,
				Recipient:  recipient,
				Expiry:     1756000000,
				Token:      "wbtc!",
				Amount:     5,
			},
			wantErrs: map[string]*errors.Error{
				"Token": errors.ErrCurrency,
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

func TestValidateClaimMsg(t *testing.T) {
	secret := []byte("12345678901234567890123456789012")

	cases := map[string]struct {
		msg      *ClaimMsg
		wantErrs map[string]*errors.Error
	}{
		"correct with an identifier": {
			msg: &ClaimMsg{
				SwapID: make([]byte, swapIDSize),
				Secret: secret,
			},
			wantErrs: map[string]*errors.Error{
				"SwapID": nil,
				"Secret": nil,
			},
		},
		"correct without an identifier": {
			msg: &ClaimMsg{
				Secret: secret,
			},
			wantErrs: map[string]*errors.Error{
				"SwapID": nil,
				"Secret": nil,
			},
		},
		"short identifier": {
			msg: &ClaimMsg{
				SwapID: []byte("short"),
				Secret: secret,
			},
			wantErrs: map[string]*errors.Error{
				"SwapID": errors.ErrInput,
			},
		},
		"short secret": {
			msg: &ClaimMsg{
				Secret: []byte("short"),
			},
			wantErrs: map[string]*errors.Error{
				"Secret": errors.ErrInput,
			},
		},
		"missing secret": {
			msg: &ClaimMsg{
				SwapID: make([]byte, swapIDSize),
			},
			wantErrs: map[string]*errors.Error{
				"Secret": errors.ErrInput,
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

func TestValidateRefundMsg(t *testing.T) {
	secretHash := HashSecret([]byte("quite a secret"))

	cases := map[string]struct {
		msg      *RefundMsg
		wantErrs map[string]*errors.Error
	}{
		"correct with an identifier": {
			msg: &RefundMsg{
				SwapID: make([]byte, swapIDSize),
			},
			wantErrs: map[string]*errors.Error{
				"SwapID":     nil,
				"SecretHash": nil,
			},
		},
		"correct with a secret hash": {
			msg: &RefundMsg{
				SecretHash: secretHash,
			},
			wantErrs: map[string]*errors.Error{
				"SwapID":     nil,
				"SecretHash": nil,
			},
		},
		"one of them is required": {
			msg: &RefundMsg{},
			wantErrs: map[string]*errors.Error{
				"SwapID": errors.ErrEmpty,
			},
		},
		"identifier and secret hash are exclusive": {
			msg: &RefundMsg{
				SwapID:     make([]byte, swapIDSize),
				SecretHash: secretHash,
			},
			wantErrs: map[string]*errors.Error{
				"SecretHash": errors.ErrInput,
			},
		},
		"short identifier": {
			msg: &RefundMsg{
				SwapID: []byte("short"),
			},
			wantErrs: map[string]*errors.Error{
				"SwapID": errors.ErrInput,
			},
		},
		"short secret hash": {
			msg: &RefundMsg{
				SecretHash: []byte("short"),
			},
			wantErrs: map[string]*errors.Error{
				"SecretHash": errors.ErrInput,
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

func TestValidateUpdateConfigurationMsg(t *testing.T) {
	owner := clasptest.RandomAddr(t)

	cases := map[string]struct {
		msg      *UpdateConfigurationMsg
		wantErrs map[string]*errors.Error
	}{
		"gates only": {
			msg: &UpdateConfigurationMsg{
				Patch: &Configuration{ClaimGate: GateClosed, RefundGate: GateOpen},
			},
			wantErrs: map[string]*errors.Error{
				"ClaimGate":  nil,
				"RefundGate": nil,
			},
		},
		"empty patch keeps everything": {
			msg: &UpdateConfigurationMsg{
				Patch: &Configuration{},
			},
			wantErrs: map[string]*errors.Error{
				"Owner":      nil,
				"Policy":     nil,
				"ClaimGate":  nil,
				"RefundGate": nil,
			},
		},
		"owner handover": {
			msg: &UpdateConfigurationMsg{
				Patch: &Configuration{Owner: owner},
			},
			wantErrs: map[string]*errors.Error{
				"Owner": nil,
			},
		},
		"missing patch": {
			msg: &UpdateConfigurationMsg{},
			wantErrs: map[string]*errors.Error{
				"Patch": errors.ErrEmpty,
			},
		},
		"the policy cannot be patched": {
			msg: &UpdateConfigurationMsg{
				Patch: &Configuration{Policy: PolicyOpaque},
			},
			wantErrs: map[string]*errors.Error{
				"Policy": errors.ErrImmutable,
			},
		},
		"unknown gate value": {
			msg: &UpdateConfigurationMsg{
				Patch: &Configuration{ClaimGate: Gate(66)},
			},
			wantErrs: map[string]*errors.Error{
				"ClaimGate": errors.ErrInput,
			},
		},
		"broken native ticker": {
			msg: &UpdateConfigurationMsg{
				Patch: &Configuration{NativeTicker: "clp"},
			},
			wantErrs: map[string]*errors.Error{
				"NativeTicker": errors.ErrCurrency,
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
