package boxtree

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompatible is returned when two trees cannot be combined because
	// their dimensions (or, for Merge, their fanouts) differ.
	ErrIncompatible = errors.New("incompatible trees")

	// ErrInvariant is returned by Validate when the tree structure is broken.
	ErrInvariant = errors.New("tree invariant violated")

	// ErrOutOfRange is the cause of option errors whose value lies outside
	// the supported range.
	ErrOutOfRange = errors.New("value out of range")
)

// ErrInvalidDimension indicates an invalid configured dimension.
//
// It unwraps to ErrOutOfRange.
type ErrInvalidDimension struct {
	Dimension int
	cause     error
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d (want 1..%d)", e.Dimension, MaxDimensions)
}

func (e *ErrInvalidDimension) Unwrap() error { return e.cause }

// ErrInvalidFanout indicates an invalid configured fanout.
//
// It unwraps to ErrOutOfRange.
type ErrInvalidFanout struct {
	Fanout int
	cause  error
}

func (e *ErrInvalidFanout) Error() string {
	return fmt.Sprintf("invalid fanout: %d (want 2..%d)", e.Fanout, MaxFanout)
}

func (e *ErrInvalidFanout) Unwrap() error { return e.cause }

func incompatible(what string, lhs, rhs int) error {
	return fmt.Errorf("%w: %s %d vs %d", ErrIncompatible, what, lhs, rhs)
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// assertf panics with a boxtree-prefixed message. It marks caller bugs such
// as invalid item bounds, which are never recovered internally.
func assertf(format string, args ...any) {
	panic("boxtree: " + fmt.Sprintf(format, args...))
}
