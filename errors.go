package reactor

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrNullListener is returned (or, for synchronous Connect calls, the
// cause of a panic) when a nil listener is registered.
var ErrNullListener = errors.New("reactor: listener must not be nil")

// IllegalStateError reports an operation attempted from a state the spec
// forbids: clearing connections mid-dispatch, completing a promise twice,
// or repositioning/weak-holding an already-closed connection.
type IllegalStateError struct {
	Op     string
	Reason string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("reactor: illegal state in %s: %s", e.Op, e.Reason)
}

func illegalState(op, reason string) *IllegalStateError {
	return &IllegalStateError{Op: op, Reason: reason}
}

// ListenerFailure wraps a panic recovered from a listener invocation.
// Cause holds whatever value was passed to panic.
type ListenerFailure struct {
	Cause any
}

func (e *ListenerFailure) Error() string {
	return fmt.Sprintf("reactor: listener failed: %v", e.Cause)
}

// Unwrap returns Cause when it is an error, so errors.Is/errors.As see
// through the wrapper; otherwise nil.
func (e *ListenerFailure) Unwrap() error {
	err, _ := e.Cause.(error)
	return err
}

// newMultiFailure aggregates zero or more failures into a single error,
// per spec §7's "single failure if one, MultiFailure if more than one"
// policy. It is built on hashicorp/go-multierror (already present in the
// retrieved pack's wwsheng009-yao module) rather than a hand-rolled
// error-slice type.
func newMultiFailure(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}

	var merr *multierror.Error
	for _, err := range errs {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}
