// Package patch provides three-state update fields for partial updates:
// a field is either left unchanged, cleared, or set to a new value. This
// keeps the three-way distinction explicit instead of overloading nil.
package patch

import (
	"github.com/samber/mo"
)

type state int

const (
	unchanged state = iota
	cleared
	set
)

// Field is an update instruction for one optional attribute.
// The zero value is Unchanged.
type Field[T any] struct {
	state state
	value mo.Option[T]
}

// Unchanged leaves the current value as is.
func Unchanged[T any]() Field[T] {
	return Field[T]{state: unchanged, value: mo.None[T]()}
}

// Clear removes the current value.
func Clear[T any]() Field[T] {
	return Field[T]{state: cleared, value: mo.None[T]()}
}

// Set replaces the current value with v.
func Set[T any](v T) Field[T] {
	return Field[T]{state: set, value: mo.Some(v)}
}

// IsUnchanged reports whether the field should be left untouched.
func (f Field[T]) IsUnchanged() bool { return f.state == unchanged }

// IsClear reports whether the field should be removed.
func (f Field[T]) IsClear() bool { return f.state == cleared }

// Value returns the replacement value, if any.
func (f Field[T]) Value() (T, bool) { return f.value.Get() }

// ApplyPtr resolves the instruction against an optional current value and
// returns the resulting pointer.
func ApplyPtr[T any](f Field[T], current *T) *T {
	switch f.state {
	case cleared:
		return nil
	case set:
		v := f.value.MustGet()
		return &v
	default:
		return current
	}
}

// Apply resolves the instruction against a required current value. Clear is
// treated as Unchanged, since a required attribute cannot be removed.
func Apply[T any](f Field[T], current T) T {
	if v, ok := f.value.Get(); ok {
		return v
	}
	return current
}
