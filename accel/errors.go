package accel

import (
	"errors"
	"fmt"
)

var (
	ErrDepthExceeded = errors.New("accel: hierarchy depth exceeds MaxDepth")
	ErrInvalidRef    = errors.New("accel: invalid node reference")
	ErrInvalidBounds = errors.New("accel: invalid child bounds")
	ErrUnknownGeom   = errors.New("accel: triangle references unknown geometry")
)

// InvariantError is the panic value raised when traversal runs into a
// hierarchy that breaks the guarantees checked by Hierarchy.Validate or when
// the traversal stack overflows.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "accel: invariant violation: " + e.Msg
}

func invariantf(format string, args ...interface{}) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}
