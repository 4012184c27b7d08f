package coerce

import (
	"errors"
	"fmt"

	"github.com/nektos/coerce/pkg/value"
)

var (
	// ErrNotConvertible is returned when a value of a kind that forbids the
	// conversion (an atom, or a big integer in a number context) is coerced.
	ErrNotConvertible = errors.New("value is not convertible")

	// ErrNotAPrimitive is returned when an object could not be reduced to a
	// primitive by any of its hooks.
	ErrNotAPrimitive = errors.New("cannot convert object to primitive value")

	// ErrRange is returned for big integer division by zero and for
	// non-integral numbers passed to an explicit big integer conversion.
	ErrRange = errors.New("value out of range")
)

// ConversionError records the operation and input kind of a failed
// conversion.
type ConversionError struct {
	Op   string
	Kind value.Kind
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap allows errors.Is and errors.As to work
func (e *ConversionError) Unwrap() error {
	return e.Err
}

func conversionError(op string, kind value.Kind, err error) error {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return err
	}
	return &ConversionError{Op: op, Kind: kind, Err: err}
}
