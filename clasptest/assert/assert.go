package assert

import (
	"reflect"
	"testing"

	"github.com/clasp-io/clasp/errors"
)

// Tester is the part of testing.TB that the assert helpers need. Tests
// can substitute their own implementation to observe failures.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails the test unless the value is nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// %+v prints the full stack trace for errors that carry one.
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) (res bool) {
	if value == nil {
		return true
	}
	// reflect's IsNil panics for kinds that cannot be nil. Those are
	// never nil.
	defer func() {
		if recover() != nil {
			res = false
		}
	}()
	return reflect.ValueOf(value).IsNil()
}

// Equal fails the test unless the two values are deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal \nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics runs the function and fails the test unless it panics.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// FieldError ensures that the error contains exactly one error for the
// given field name and that it matches the wanted kind. Pass a nil want
// to assert that the field carries no error at all.
func FieldError(t testing.TB, err error, fieldName string, want *errors.Error) {
	t.Helper()

	errs := errors.FieldErrors(err, fieldName)

	if want == nil {
		if len(errs) == 0 {
			return
		}
		for i, e := range errs {
			t.Logf("\terror %d: %q", i+1, e)
		}
		t.Fatalf("expected no error, got %d", len(errs))
	}

	switch len(errs) {
	case 0:
		t.Fatal("no error found")
	case 1:
		if !want.Is(errs[0]) {
			t.Fatalf("unexpected error found: %q", errs[0])
		}
	default:
		t.Errorf("want one error, got %d", len(errs))
		for _, e := range errs {
			t.Logf("\terror: %q", e)
			if want.Is(e) {
				return
			}
		}
		t.Fatalf("error not found")
	}
}

// IsErr fails the test unless the got error is of the wanted kind.
func IsErr(t testing.TB, want, got error) {
	t.Helper()

	if want == got {
		return
	}
	type kinder interface {
		Is(error) bool
	}
	if want, ok := want.(kinder); ok && want.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
