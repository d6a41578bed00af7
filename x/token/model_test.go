package token

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clasp-io/clasp/clasptest"
)

func TestBalanceKeyLayout(t *testing.T) {
	addr := clasptest.RandomAddr(t)

	key := balanceKey(addr, "WBTC")
	assert.True(t, bytes.HasPrefix(key, addr))
	assert.Equal(t, "WBTC", string(key[len(addr):]))

	// two tickers of one account share the address prefix only
	other := balanceKey(addr, "WETH")
	assert.NotEqual(t, key, other)
	assert.True(t, bytes.HasPrefix(other, addr))
}

func TestModelValidation(t *testing.T) {
	assert.NoError(t, (&Token{Name: "Wrapped Bitcoin"}).Validate())
	assert.Error(t, (&Token{Name: "xy"}).Validate())

	assert.NoError(t, (&Balance{Ticker: "WBTC", Amount: 5}).Validate())
	assert.Error(t, (&Balance{Ticker: "WBTC", Amount: -5}).Validate())
	assert.Error(t, (&Balance{Ticker: "toolong", Amount: 5}).Validate())

	assert.NoError(t, (&Allowance{Ticker: "WBTC", Amount: 0}).Validate())
	assert.Error(t, (&Allowance{Ticker: "WBTC", Amount: -1}).Validate())
}
