// Package host models the scripting host's side of the binding: dynamic
// values, callable shapes, the invocation collaborator, and the execution
// context that owns the interpreter state.
package host

import (
	"fmt"

	"github.com/bindlab/girt/errors"
)

// Value is a dynamically-typed host value.
type Value = any

// Func is a plain host function value.
type Func func(args []Value) (Value, error)

// Callable is an opaque host object that can be invoked.
type Callable interface {
	Call(args []Value) (Value, error)
}

// Table is a host table value. A table is callable when it carries a
// callable "__call" entry.
type Table map[string]Value

// CallKey is the table entry consulted when a table is invoked.
const CallKey = "__call"

// IsCallable reports whether v is one of the recognized callable shapes:
// function, callable table, or opaque callable object.
func IsCallable(v Value) bool {
	switch t := v.(type) {
	case Func:
		return true
	case func(args []Value) (Value, error):
		return true
	case Callable:
		return true
	case Table:
		if inner, ok := t[CallKey]; ok {
			return IsCallable(inner)
		}
	}
	return false
}

// Invoke is the host callable invocation collaborator. It dispatches by
// callable shape and returns the single result or the raised error.
func Invoke(callable Value, args []Value) (Value, error) {
	switch t := callable.(type) {
	case Func:
		return t(args)
	case func(args []Value) (Value, error):
		return t(args)
	case Callable:
		return t.Call(args)
	case Table:
		inner, ok := t[CallKey]
		if !ok || !IsCallable(inner) {
			return nil, errors.NotCallable(errors.PhaseInvoke, "table")
		}
		// A called table receives itself as the leading argument.
		return Invoke(inner, append([]Value{t}, args...))
	}
	return nil, errors.NotCallable(errors.PhaseInvoke, fmt.Sprintf("%T", callable))
}
