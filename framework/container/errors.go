package container

import (
	"strings"

	"github.com/pkg/errors"
)

// ── Sentinels ─────────────────────────────────────────────────────────────────

var (
	// ErrServiceNotFound matches every *NotFoundError.
	ErrServiceNotFound = errors.New("container: service not found")

	// ErrResolution matches every *ResolutionError.
	ErrResolution = errors.New("container: service resolution failed")

	// ErrCircularDependency is the cause of a ResolutionError raised when a
	// service reappears on its own resolution chain, whether it is reached
	// through Make, Call or a factory resolving with Get.
	ErrCircularDependency = errors.New("container: circular dependency")
)

// ── NotFoundError ─────────────────────────────────────────────────────────────

// NotFoundError is returned by Get when no registration exists for ID.
// Use Has first when "unregistered" is a normal branch.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "container: no service registered for [" + e.ID + "]"
}

// Is reports whether target is ErrServiceNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrServiceNotFound }

// ── ResolutionError ───────────────────────────────────────────────────────────

// ResolutionError wraps any failure raised while building a service: a
// factory or constructor that failed or panicked, a type with no constructor,
// a parameter that could not be bound, or a method that does not exist.
type ResolutionError struct {
	ID     string // identifier or type key being resolved
	Method string // set by Call
	Param  string // offending parameter name, if any
	Cause  error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("container: cannot resolve [")
	b.WriteString(e.ID)
	b.WriteString("]")
	if e.Method != "" {
		b.WriteString(" method ")
		b.WriteString(e.Method)
	}
	if e.Param != "" {
		b.WriteString(" parameter $")
		b.WriteString(e.Param)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying failure.
func (e *ResolutionError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrResolution.
func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

func resolutionError(id, method, param string, cause error) *ResolutionError {
	return &ResolutionError{ID: id, Method: method, Param: param, Cause: cause}
}
