// Package greenerr defines the error taxonomy surfaced by the putting core.
//
// Every failure is one of three kinds: bad caller input, an underdetermined
// surface fit, or a missing/malformed heightfield artifact. A roll that never
// comes to rest is not an error; it is reported as a diverged result.
package greenerr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	KindInput Kind = iota + 1
	KindReconstruction
	KindResource
)

// Sentinels matched with errors.Is.
var (
	ErrInput          = errors.New("invalid input")
	ErrReconstruction = errors.New("surface reconstruction failed")
	ErrResource       = errors.New("heightfield artifact unavailable")
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindReconstruction:
		return "reconstruction"
	case KindResource:
		return "resource"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInput:
		return ErrInput
	case KindReconstruction:
		return ErrReconstruction
	case KindResource:
		return ErrResource
	}
	return nil
}

// Error is a typed failure with the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Input returns a KindInput error.
func Input(op, format string, args ...interface{}) error {
	return &Error{Kind: KindInput, Op: op, Err: fmt.Errorf(format, args...)}
}

// Reconstruction returns a KindReconstruction error.
func Reconstruction(op, format string, args ...interface{}) error {
	return &Error{Kind: KindReconstruction, Op: op, Err: fmt.Errorf(format, args...)}
}

// Resource returns a KindResource error. Use %w in format to keep the cause.
func Resource(op, format string, args ...interface{}) error {
	return &Error{Kind: KindResource, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
