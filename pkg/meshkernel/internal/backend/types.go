package backend

import (
	"errors"
	"fmt"
)

// ErrNotBuilt reports that the native bindings were not linked into the
// current binary.
var ErrNotBuilt = errors.New("meshkernel/internal/backend: native bindings not built")

// ContextID identifies one engine-side mesh state.
type ContextID int32

// AllocID identifies a result buffer allocated by the engine. Zero is never a
// valid allocation.
type AllocID uint64

// Status is the code every engine entry point returns.
type Status int32

const (
	StatusSuccess Status = iota
	StatusException
	StatusInvalidGeometry
	StatusRangeError
	StatusInvalidState
	StatusAllocationFailure
	StatusInvalidContext
	StatusNotImplemented
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusException:
		return "exception"
	case StatusInvalidGeometry:
		return "invalid_geometry"
	case StatusRangeError:
		return "range_error"
	case StatusInvalidState:
		return "invalid_state"
	case StatusAllocationFailure:
		return "allocation_failure"
	case StatusInvalidContext:
		return "invalid_context"
	case StatusNotImplemented:
		return "not_implemented"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// StatusError carries a failed status together with the diagnostic the engine
// recorded for it. The public package translates it into its error taxonomy.
type StatusError struct {
	Op      string
	Status  Status
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Status, e.Message)
}

// Check converts a status into an error, reading the engine's last-error
// message on failure. Only the message is subject to the process-wide
// caveat of Engine.LastError; Status is taken from the call itself.
func Check(e Engine, op string, st Status) error {
	if st == StatusSuccess {
		return nil
	}
	return &StatusError{Op: op, Status: st, Message: e.LastError()}
}

// Point is a plain coordinate pair passed by value to the engine.
type Point struct {
	X float64
	Y float64
}
