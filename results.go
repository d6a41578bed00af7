package clasp

import (
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// CheckResult captures any non-error result of a transaction check, to make
// sure errors are always reported through the error return.
type CheckResult struct {
	// Data is a machine-parseable return value, like the id of a created
	// entity.
	Data []byte
	// Log is a human-readable informational string.
	Log string
	// GasAllocated is the maximum units of work we allow this tx to
	// perform.
	GasAllocated int64
}

// NewCheckResult constructs a check result with the given data.
func NewCheckResult(data []byte) *CheckResult {
	return &CheckResult{Data: data}
}

// ToABCI converts this result into the ABCI response type.
func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverResult captures any non-error result of a transaction delivery, to
// make sure errors are always reported through the error return.
type DeliverResult struct {
	// Data is a machine-parseable return value, like the id of a created
	// entity.
	Data []byte
	// Log is a human-readable informational string.
	Log string
	// Tags are indexed by the transaction store to support searching the
	// transaction history. Relayers follow these.
	Tags []common.KVPair
	// GasUsed is the units of work performed by this tx.
	GasUsed int64
}

// NewDeliverResult constructs a deliver result with the given data.
func NewDeliverResult(data []byte) *DeliverResult {
	return &DeliverResult{Data: data}
}

// ToABCI converts this result into the ABCI response type.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    d.Tags,
		GasUsed: d.GasUsed,
	}
}

// Tag constructs an indexing tag from a key and value string.
func Tag(key, value string) common.KVPair {
	return common.KVPair{Key: []byte(key), Value: []byte(value)}
}
