// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

// Package task maps the work reference of a job to an invokable function.
// Jobs carry a Ref, a registered task name plus its arguments, and backends
// resolve it against a Registry at execution time. The batch backend
// serializes the Ref as a JSON descriptor instead of transporting code, so
// the payload side only needs the same registrations to run it.
package task

import (
	"context"
	"sync"

	"github.com/iSach/dawgz/errors"
)

// Errors returned when resolving task references.
const (
	ErrNotRegistered errors.Kind = "task not registered"
	ErrDuplicate     errors.Kind = "task already registered"
)

// NoIndex is the Invocation.Index value of non-array invocations.
const NoIndex = -1

// Invocation carries the arguments of one task call.
type Invocation struct {
	// Args are the declared arguments of the job's task reference.
	Args []string

	// Index is the array index of the call, NoIndex when the job has
	// no array.
	Index int
}

// Fn is an invokable unit of work.
type Fn func(ctx context.Context, inv Invocation) (interface{}, error)

// Registry resolves task names to functions.
// It is safe for concurrent use.
type Registry struct {
	mtx   sync.RWMutex
	tasks map[string]Fn
}

// NewRegistry creates a new empty task registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]Fn)}
}

// Register records fn under the given name.
// Registering the same name twice is an error.
func (r *Registry) Register(name string, fn Fn) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.tasks[name]; ok {
		return errors.E(ErrDuplicate, name)
	}
	r.tasks[name] = fn
	return nil
}

// Lookup returns the function registered under the given name.
func (r *Registry) Lookup(name string) (Fn, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	fn, ok := r.tasks[name]
	if !ok {
		return nil, errors.E(ErrNotRegistered, name)
	}
	return fn, nil
}

// Default is the registry used when none is configured explicitly.
var Default = NewRegistry()

// Register records fn on the default registry.
func Register(name string, fn Fn) error {
	return Default.Register(name, fn)
}

// MustRegister is like Register but panics on error.
// It is meant for registrations done from package init functions.
func MustRegister(name string, fn Fn) {
	if err := Register(name, fn); err != nil {
		panic(err)
	}
}
