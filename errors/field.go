package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field wraps an error with the name of the attribute it concerns.
// A nil error returns nil.
//
// Field names follow Go naming, for example UserName or MaxAge. Nested
// attributes use dot notation (User.Age) and elements of an iterable
// use the zero based index as their name (Tags.0, Profiles.2.ID).
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}

	// Attach a stacktrace only once, at the innermost wrap.
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}

	return &fieldError{
		parent: err,
		field:  fieldName,
		desc:   description,
	}
}

// AppendField combines the given errors with a new field error.
func AppendField(errsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	field  string
	desc   string
	parent error
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

func (err *fieldError) Cause() error { return err.parent }

func (err *fieldError) Field() string { return err.field }

// FieldErrors collects every error attributed to the given field name.
// Only errors implementing the fielder interface with a matching name
// are included.
func FieldErrors(err error, fieldName string) []error {
	if isNilErr(err) {
		return nil
	}

	var res []error
	for err != nil {
		if f, ok := err.(fielder); ok && f.Field() == fieldName {
			return append(res, err)
		}

		if u, ok := err.(unpacker); ok {
			// Unpack already yields every child, so following the
			// cause chain on top of it would only revisit them.
			for _, e := range u.Unpack() {
				res = append(res, FieldErrors(e, fieldName)...)
			}
			return res
		}

		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return res
}

type fielder interface {
	// Field names the attribute this error was created for.
	Field() string
}
