package utils

import (
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// Logging reports every transaction passing through the stack on the
// context logger: call duration, the result log and, on failure, the
// error with its wire code. Checks log at debug level, deliveries at
// info, failures of either at error.
type Logging struct{}

var _ clasp.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

func (l Logging) Check(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx, next clasp.Checker) (*clasp.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	if logger := txLogger(ctx, start, err); err != nil {
		logger.Error("check failed")
	} else {
		logger.Debug(res.Log)
	}
	return res, err
}

func (l Logging) Deliver(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx, next clasp.Deliverer) (*clasp.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	if logger := txLogger(ctx, start, err); err != nil {
		logger.Error("delivery failed")
	} else {
		logger.Info(res.Log)
	}
	return res, err
}

// txLogger stamps the context logger with the call duration in
// microseconds and, when the call failed, the error and its code.
func txLogger(ctx clasp.Context, start time.Time, err error) log.Logger {
	logger := clasp.GetLogger(ctx).With("duration", time.Since(start)/time.Microsecond)
	if err != nil {
		logger = logger.With("err", err, "code", errors.Code(err))
	}
	return logger
}
