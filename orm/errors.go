package orm

import (
	"github.com/clasp-io/clasp/errors"
)

// orm reserves 100~109 error codes

// InvalidIndexErr is returned when the index requested does not exist on
// the bucket.
var InvalidIndexErr = errors.Register(100, "invalid index")
