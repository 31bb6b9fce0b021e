package meshkernel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

// Kind categorizes an Error.
type Kind string

const (
	KindValidation    Kind = "validation"     // malformed caller data
	KindInvalidState  Kind = "invalid_state"  // protocol misuse or engine-side state mismatch
	KindInvalidHandle Kind = "invalid_handle" // destroyed or unknown session
	KindResource      Kind = "resource"       // allocation or internal engine failure
	KindEngine        Kind = "engine"         // computation reported failure
)

// Status is the code every engine entry point returns. Error.Status holds
// it as a plain int32.
type Status = backend.Status

const (
	StatusSuccess           = backend.StatusSuccess
	StatusException         = backend.StatusException
	StatusInvalidGeometry   = backend.StatusInvalidGeometry
	StatusRangeError        = backend.StatusRangeError
	StatusInvalidState      = backend.StatusInvalidState
	StatusAllocationFailure = backend.StatusAllocationFailure
	StatusInvalidContext    = backend.StatusInvalidContext
	StatusNotImplemented    = backend.StatusNotImplemented
)

// Error is the structured error returned by every operation of the package.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	// Status is the engine status code when the failure came from the engine.
	Status int32
	// Native is the engine's diagnostic text, preserved verbatim.
	Native string
	Cause  error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrInvalidState  = &Error{Kind: KindInvalidState}
	ErrInvalidHandle = &Error{Kind: KindInvalidHandle}
	ErrResource      = &Error{Kind: KindResource}
	ErrEngine        = &Error{Kind: KindEngine}
)

// ErrNotBuilt reports that the binary was built without the native engine.
// Manager construction wraps it in a resource error.
var ErrNotBuilt = backend.ErrNotBuilt

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteByte('[')
		b.WriteString(e.Op)
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Native != "" {
		b.WriteString(": engine: ")
		b.WriteString(e.Native)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. An invalid handle
// is also an invalid state.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind == t.Kind {
		return true
	}
	return e.Kind == KindInvalidHandle && t.Kind == KindInvalidState
}

func newError(kind Kind, op, format string, args ...any) *Error {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Op: op, Detail: detail}
}

func validationf(op, format string, args ...any) *Error {
	return newError(KindValidation, op, format, args...)
}

func invalidStatef(op, format string, args ...any) *Error {
	return newError(KindInvalidState, op, format, args...)
}

func invalidHandle(op string, h Handle) *Error {
	return newError(KindInvalidHandle, op, "session %d has been destroyed", h)
}

// kindOf maps an engine status to an error kind.
func kindOf(st backend.Status) Kind {
	switch st {
	case backend.StatusInvalidGeometry, backend.StatusRangeError:
		return KindValidation
	case backend.StatusInvalidState, backend.StatusInvalidContext:
		return KindInvalidState
	case backend.StatusAllocationFailure:
		return KindResource
	default:
		return KindEngine
	}
}

// RemapError converts backend errors into the package's error taxonomy.
// Errors that are already *Error, and nil, pass through unchanged.
func RemapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	var se *backend.StatusError
	if errors.As(err, &se) {
		return &Error{
			Kind:   kindOf(se.Status),
			Op:     op,
			Detail: se.Status.String(),
			Status: int32(se.Status),
			Native: se.Message,
			Cause:  err,
		}
	}
	if errors.Is(err, backend.ErrNotBuilt) {
		return &Error{Kind: KindResource, Op: op, Detail: "native engine unavailable", Cause: err}
	}
	return &Error{Kind: KindEngine, Op: op, Cause: err}
}

// errorKind returns the kind of err for metrics tags.
func errorKind(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return string(e.Kind)
	}
	return "unknown"
}
