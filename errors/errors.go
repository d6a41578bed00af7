package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized marks a request that lacks the required
	// authorization.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound marks an operation that cannot complete because the
	// data it needs does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrMsg marks a message that failed validation and cannot be
	// processed.
	ErrMsg = Register(4, "invalid message")

	// ErrModel is returned whenever a model is invalid and cannot be
	// used (ie. persisted).
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate is returned when there is a record already that has
	// the same unique key/index used.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman is returned when application reaches a code path which
	// should not ever be reached if the code was written as expected by
	// the framework.
	ErrHuman = Register(7, "coding error")

	// ErrImmutable is returned when something that is considered
	// immutable gets modified.
	ErrImmutable = Register(8, "cannot be modified")

	// ErrEmpty is returned when a value fails a not empty assertion.
	ErrEmpty = Register(9, "value is empty")

	// ErrState is returned when an object is in invalid state.
	ErrState = Register(10, "invalid state")

	// ErrType is returned whenever the type is not what was expected.
	ErrType = Register(11, "invalid type")

	// ErrAmount is returned when processing an invalid or insufficient
	// amount of currency.
	ErrAmount = Register(12, "invalid amount")

	// ErrInput stands for general input problems indication.
	ErrInput = Register(13, "invalid input")

	// ErrExpired stands for expired entities, normally has to do with
	// deadline expirations.
	ErrExpired = Register(14, "expired")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(15, "value overflow")

	// ErrCurrency is returned whenever an unsupported or mismatched
	// currency is processed.
	ErrCurrency = Register(16, "invalid currency")

	// ErrDatabase is returned when the underlying storage fails.
	ErrDatabase = Register(17, "database error")

	// ErrIteratorDone is returned by iterators that reached the end of
	// their range.
	ErrIteratorDone = Register(18, "iterator done")

	// ErrPanic is set only when recovering from a panic. Its high code
	// keeps it out of the regular range and signals that system details
	// must be redacted before reaching a client.
	ErrPanic = Register(111222, "panic")
)

// Register declares a new root error with a unique wire code. All
// runtime errors must wrap one of the registered roots.
//
// The common roots live in this package; extensions may register
// additional codes for their own taxonomy. Registering the same code
// twice panics, so call this only from package initialization.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes guards wire code uniqueness across all registrations.
var usedCodes = map[uint32]*Error{
	internalCode: nil, // Reserved for non-clasp errors, must not be used.
}

const (
	// SuccessCode is the wire code of a successful operation.
	SuccessCode uint32 = 0

	// internalCode is the wire code of any error that does not wrap a
	// registered root error. The real cause is not leaked to the client.
	internalCode uint32 = 1
)

// Error is a root error kind.
//
// Root errors categorize failures. Every error produced at runtime
// should wrap a root so that callers can test its kind with Is and so
// that only the wire code, never internal detail, is exposed to the
// client. Declare new roots through Register.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the wire code of this error kind.
func (e Error) Code() uint32 {
	return e.code
}

// New returns an error with this kind as the root cause. It is
// shorthand for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is New with fmt.Sprintf formatting of the description.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is reports whether the given error is of this kind. The error is
// unwrapped through its Cause chain and, for combined errors, every
// member is inspected.
func (kind *Error) Is(err error) bool {
	if kind == nil {
		return isNilErr(err)
	}

	for {
		if err == kind {
			return true
		}

		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				if kind.Is(e) {
					return true
				}
			}
			return false
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// isNilErr treats both an untyped nil and a typed nil pointer as no
// error. The reflect check is what catches the latter.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr && val.IsNil() {
		return true
	}
	return false
}

// Wrap annotates an error with an additional description layer.
//
// Errors that carry no wire code (stdlib errors for example) are later
// reported to the client as internal. Wrapping nil returns nil, so the
// result of a call can be wrapped unconditionally.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// Attach a stacktrace only once, at the innermost wrap.
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf is Wrap with fmt.Sprintf formatting of the description.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// msg describes this layer only.
	msg string
	// parent is the error being annotated.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Code returns the wire code of the given error. A nil error reports
// success. An error that does not wrap a registered root error is reported
// as internal.
func Code(err error) uint32 {
	if isNilErr(err) {
		return SuccessCode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// Recover stops a propagating panic and stores it in *err as an
// ErrPanic. It must be invoked through defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType annotates an error with the dynamic type of obj.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

// causer is implemented by errors that wrap another error.
type causer interface {
	Cause() error
}

// coder is implemented by errors that carry a wire code.
type coder interface {
	Code() uint32
}

// unpacker is implemented by errors that combine several errors.
type unpacker interface {
	Unpack() []error
}
