package clasp

import (
	"fmt"

	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/clasp-io/clasp/errors"
)

// CheckOrError returns an ABCI response for CheckTx, converting the error
// message if present, or using the successful CheckResult.
func CheckOrError(res *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return res.ToABCI()
}

// DeliverOrError returns an ABCI response for DeliverTx, converting the
// error message if present, or using the successful DeliverResult.
func DeliverOrError(res *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return res.ToABCI()
}

// DeliverTxError converts any error into an abci.ResponseDeliverTx.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	log := "cannot deliver tx"
	if debug {
		log = fmt.Sprintf("cannot deliver tx: %+v", err)
	}
	return abci.ResponseDeliverTx{
		Code: errors.Code(err),
		Log:  log,
	}
}

// CheckTxError converts any error into an abci.ResponseCheckTx.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	log := "cannot check tx"
	if debug {
		log = fmt.Sprintf("cannot check tx: %+v", err)
	}
	return abci.ResponseCheckTx{
		Code: errors.Code(err),
		Log:  log,
	}
}
