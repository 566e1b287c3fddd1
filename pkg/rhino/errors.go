package rhino

import (
	"errors"
	"fmt"
)

// Sentinel errors for runtime and object-model failures.
var (
	// ErrTypeError is the umbrella for script-level type violations.
	// Every structured validation error in this package unwraps to it,
	// so callers can match the whole family with errors.Is.
	ErrTypeError = errors.New("type error")

	// ErrObjectSealed is returned when defining or adding a property
	// on a sealed object.
	ErrObjectSealed = errors.New("object is sealed")

	// ErrPermanentProperty is returned when redefining a property
	// marked Permanent.
	ErrPermanentProperty = errors.New("property is permanent")

	// ErrReadOnlyProperty is returned when assigning to a property
	// marked ReadOnly.
	ErrReadOnlyProperty = errors.New("property is read-only")

	// ErrScopeReleased is returned when a scope is used after its
	// release function has run.
	ErrScopeReleased = errors.New("scope already released")

	// ErrNilHost is returned when a registry is created without a host.
	ErrNilHost = errors.New("host cannot be nil")

	// ErrRegistryClosed is returned by Register after Close.
	ErrRegistryClosed = errors.New("registry is closed")
)

// ConstructionError reports an invalid construction: a constructor
// called without new, or constructor arguments that cannot produce an
// instance.
type ConstructionError struct {
	Name   string
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

func (e *ConstructionError) Unwrap() error { return ErrTypeError }

// ArgumentError reports a method invoked with fewer arguments than it
// requires.
type ArgumentError struct {
	Method   string
	Required int
	Got      int
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s requires at least %d arguments, got %d", e.Method, e.Required, e.Got)
}

func (e *ArgumentError) Unwrap() error { return ErrTypeError }

// TargetError reports a finalization target that is not a composite
// value and so cannot be weakly tracked.
type TargetError struct {
	Value Value
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("finalization target must be an object, got %s", TypeName(e.Value))
}

func (e *TargetError) Unwrap() error { return ErrTypeError }

// SameTargetError reports a registration whose held value is the
// target itself, which would keep the target reachable forever.
type SameTargetError struct {
	Target Value
}

func (e *SameTargetError) Error() string {
	return "finalization target and held value must be different"
}

func (e *SameTargetError) Unwrap() error { return ErrTypeError }

// ReceiverError reports a method invoked on a this value that is not
// an instance of the expected class.
type ReceiverError struct {
	Method   string
	Receiver Value
}

func (e *ReceiverError) Error() string {
	return fmt.Sprintf("%s called on incompatible receiver (%s)", e.Method, TypeName(e.Receiver))
}

func (e *ReceiverError) Unwrap() error { return ErrTypeError }

// NotCallableError reports an invocation of a value that is not a
// function.
type NotCallableError struct {
	Value Value
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("%s is not callable", TypeName(e.Value))
}

func (e *NotCallableError) Unwrap() error { return ErrTypeError }

// PanicError wraps a panic recovered from a native callback so it can
// travel as an ordinary error.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("callback panicked: %v", e.Value)
}
