// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

// Package errors provides the error values used by all dawgz packages.
// Errors are built with E() from a kind, a description and an underlying
// cause, and are matched by kind with IsKind().
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the error type used by all dawgz packages.
type Error struct {
	// Kind is the kind of error.
	Kind Kind

	// Description of the error.
	Description string

	// Err represents the underlying error.
	Err error
}

// Kind defines the kind of an error.
type Kind string

// Separator joins the error components when rendering the message.
const Separator = ": "

// E builds an error value from its arguments.
// There must be at least one argument or E panics.
// The type of each argument determines its meaning. If more than one
// argument of a given type is presented, only the last one is recorded.
//
// The types are:
//
//	errors.Kind
//		The kind of error (eg.: job failed, cyclic dependency graph, etc).
//	string
//		Treated as the error description.
//	error
//		The underlying error that triggered this one.
//
// If the underlying error is an *Error carrying the same kind or
// description, the duplicated fields of the inner error are erased so
// messages do not repeat themselves.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("errors.E called with no args")
	}

	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case string:
			e.Description = arg
		case error:
			e.Err = arg
		default:
			panic(fmt.Errorf("errors.E called with unknown type %T", arg))
		}
	}

	if e.isEmpty() && e.Err == nil {
		panic(errors.New("errors.E called with empty error"))
	}

	prev, ok := e.Err.(*Error)
	if !ok {
		return e
	}

	if prev.Kind == e.Kind {
		prev.Kind = ""
	} else if e.Kind == "" {
		e.Kind = prev.Kind
		prev.Kind = ""
	}

	if prev.Description == e.Description {
		prev.Description = ""
	}

	if prev.isEmpty() {
		e.Err = prev.Err
	}

	return e
}

// isEmpty tells if all fields of this error are empty.
// Note that e.Err is the underlying error hence not checked.
func (e *Error) isEmpty() bool {
	return e.Kind == "" && e.Description == ""
}

// Error returns the message of the error, joining the non-empty components
// with the Separator.
func (e *Error) Error() string {
	if e.isEmpty() {
		if e.Err != nil {
			return e.Err.Error()
		}
		return ""
	}

	var parts []string
	if e.Kind != "" {
		parts = append(parts, string(e.Kind))
	}
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, Separator)
}

// Unwrap returns the wrapped error, if there is any.
// Returns nil otherwise.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind tells if err is of kind k.
// It returns false if err is nil or not an *errors.Error.
// If the error has no kind set, it recursively checks the underlying error.
func IsKind(err error, k Kind) bool {
	if err == nil {
		return false
	}
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	if e.Kind != "" {
		return e.Kind == k
	}
	return IsKind(e.Err, k)
}

// Is tells if err matches the target error.
// The target error must be of type *errors.Error, otherwise it just
// delegates to the standard errors.Is.
// The fields set in the target are compared against the error (or any of
// its underlying errors).
func Is(err, target error) bool {
	if err == nil || target == nil {
		return err == target
	}
	e, ok := err.(*Error)
	if !ok {
		return errors.Is(err, target)
	}
	t, ok := target.(*Error)
	if !ok {
		return errors.Is(e.Err, target)
	}
	if t.Kind != "" && !IsKind(err, t.Kind) {
		return false
	}
	if t.Description != "" && t.Description != e.Description {
		if e.Err != nil {
			return Is(e.Err, target)
		}
		return false
	}
	return true
}

// As is the same as the standard errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
