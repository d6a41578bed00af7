package errors

import (
	"fmt"
	"strings"
)

// Append combines given errors into a single one. Nil errors are ignored.
// Already combined errors are flattened. If no non-nil error is given, nil
// is returned.
func Append(errs ...error) error {
	var res multiError
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if u, ok := e.(unpacker); ok {
			res = append(res, u.Unpack()...)
		} else {
			res = append(res, e)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiError represents a group of errors. It is a flat structure and must
// not contain another multiError instance.
type multiError []error

var _ error = (multiError)(nil)
var _ unpacker = (multiError)(nil)
var _ coder = (multiError)(nil)

func (errs multiError) Error() string {
	switch len(errs) {
	case 0:
		return "<nil>"
	case 1:
		return errs[0].Error()
	}
	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(errs), strings.Join(points, "\n\t"))
}

// Unpack implements the unpacker interface.
func (errs multiError) Unpack() []error {
	return errs
}

// Code returns the wire code of the first member, consistent with the
// fail-fast reporting of combined failures.
func (errs multiError) Code() uint32 {
	if len(errs) == 0 {
		return SuccessCode
	}
	return Code(errs[0])
}
