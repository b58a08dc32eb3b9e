package gospy

import (
	"errors"
	"fmt"

	"github.com/mickamy/gospy/internal/reflector"
)

var (
	// ErrUnknownMember is returned when a name does not match any discovered member of the right kind.
	ErrUnknownMember = errors.New("unknown member")
	// ErrNoFailure is returned by LastFailure when no failure has been captured since the last ClearLog.
	ErrNoFailure = errors.New("no failure recorded")
	// ErrNoValue is returned when reading a data member that was deleted.
	ErrNoValue = errors.New("no value present")
	// ErrBadArguments is returned when arguments or values do not fit the member's type.
	ErrBadArguments = reflector.ErrBadArguments
	// ErrUnwrapped is returned by operations on a proxy after Unwrap.
	ErrUnwrapped = errors.New("proxy already unwrapped")
	// ErrNotWrappable is returned when no target can be obtained from the Wrap argument.
	ErrNotWrappable = errors.New("not wrappable")
)

// PanicError carries a panic raised by a target operation.
// It is stored in call and failure records; the panic itself is re-raised unchanged.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
