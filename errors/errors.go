// The errors package provides additional error primitives. Decoders use it to
// return a list of warnings alongside a hard error.
package errors

import (
	"errors"
	"strconv"
	"strings"
)

func New(text string) error {
	return errors.New(text)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Errors is a list of errors, usually warnings produced while decoding.
type Errors []error

// Error formats the list by writing each message on its own line. Lines
// within a message are indented by a tab.
func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	}
	var buf strings.Builder
	buf.WriteString(strconv.Itoa(len(errs)))
	buf.WriteString(" errors:")
	for _, err := range errs {
		buf.WriteString("\n\t")
		buf.WriteString(strings.ReplaceAll(err.Error(), "\n", "\n\t"))
	}
	return buf.String()
}

// Is reports whether any error in the list matches target.
func (errs Errors) Is(target error) bool {
	for _, err := range errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Append returns errs with each non-nil err appended to it.
func (errs Errors) Append(err ...error) Errors {
	for _, err := range err {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Return returns nil if errs is empty, and errs otherwise.
func (errs Errors) Return() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Union combines errs into a single Errors, flattening any that are already
// Errors. Returns nil if every err is nil or empty.
func Union(errs ...error) error {
	var e Errors
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case Errors:
			e = e.Append(err...)
		default:
			e = append(e, err)
		}
	}
	return e.Return()
}
