package cash

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/clasptest"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/store"
)

func TestInitFromGenesis(t *testing.T) {
	addr := clasptest.RandomAddr(t)

	raw := fmt.Sprintf(`[
		{
			"address": "%s",
			"coins": [
				"50 ETH",
				{"amount": 150, "ticker": "BTC"}
			]
		}
	]`, addr)
	opts := clasp.Options{"cash": json.RawMessage(raw)}

	kv := store.MemStore()
	var ini Initializer
	require.NoError(t, ini.FromGenesis(opts, kv))

	wallet, err := NewBucket().Get(kv, addr)
	require.NoError(t, err)
	require.NotNil(t, wallet)
	assert.True(t, wallet.Coins().Contains(coin.NewCoin(50, "ETH")))
	assert.True(t, wallet.Coins().Contains(coin.NewCoin(150, "BTC")))
}

func TestInitFromGenesisIgnoresMissingSection(t *testing.T) {
	kv := store.MemStore()
	var ini Initializer
	assert.NoError(t, ini.FromGenesis(clasp.Options{}, kv))
}

func TestInitFromGenesisRejectsBadAddress(t *testing.T) {
	opts := clasp.Options{"cash": json.RawMessage(`[
		{"address": "", "coins": ["1 ETH"]}
	]`)}

	kv := store.MemStore()
	var ini Initializer
	assert.Error(t, ini.FromGenesis(opts, kv))
}
