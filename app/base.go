package app

import (
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// BaseApp extends StoreApp with transaction processing. Incoming
// CheckTx and DeliverTx bytes are decoded and dispatched to the
// configured handler stack.
type BaseApp struct {
	*StoreApp
	decoder clasp.TxDecoder
	handler clasp.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp combines the pieces into a complete abci application.
// With debug set, error responses include the full error text instead
// of the redacted form.
func NewBaseApp(
	store *StoreApp,
	decoder clasp.TxDecoder,
	handler clasp.Handler,
	debug bool,
) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

// DeliverTx decodes the transaction and runs it against the deliver
// state.
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return clasp.DeliverTxError(err, b.debug)
	}

	ctx := clasp.WithLogInfo(b.BlockContext(),
		"call", "deliver_tx",
		"path", clasp.GetPath(tx))

	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return clasp.DeliverOrError(res, err, b.debug)
}

// CheckTx decodes the transaction and runs it against the throwaway
// check state.
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return clasp.CheckTxError(err, b.debug)
	}

	ctx := clasp.WithLogInfo(b.BlockContext(),
		"call", "check_tx",
		"path", clasp.GetPath(tx))

	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return clasp.CheckOrError(res, err, b.debug)
}

// loadTx runs the decoder with a panic guard, as the input bytes come
// straight from the network.
func (b BaseApp) loadTx(txBytes []byte) (tx clasp.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = b.decoder(txBytes)
	return
}
