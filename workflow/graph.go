// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

// Package workflow provides the dependency graph primitives of dawgz: an
// arena of jobs addressed by generated identifiers, labeled dependency
// edges kept mutually on both endpoints, depth-first traversal, cycle
// detection and pruning of already satisfied work.
package workflow

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iSach/dawgz/errors"
)

type (
	// ID of jobs. Assigned at construction time, stable for the whole
	// scheduling run and usable as a map key everywhere, including
	// across process boundaries.
	ID string

	// Status is the condition a dependency edge requires of the
	// dependency's outcome.
	Status string

	// WaitMode tells how many dependency edges must be satisfied before
	// a job may execute.
	WaitMode string
)

// Dependency statuses.
const (
	Success Status = "success"
	Failure Status = "failure"
	Any     Status = "any"
)

// Wait modes.
const (
	WaitAll WaitMode = "all"
	WaitAny WaitMode = "any"
)

// Errors returned when declaring jobs and edges.
const (
	ErrInvalidJob      errors.Kind = "invalid job declaration"
	ErrInvalidStatus   errors.Kind = "invalid dependency status"
	ErrInvalidWaitMode errors.Kind = "invalid wait mode"
	ErrArityMismatch   errors.Kind = "postcondition arity mismatch"
	ErrJobNotFound     errors.Kind = "job not found"
)

// edge is one directed labeled edge stored on the arena.
type edge struct {
	id     ID
	status Status
}

// Graph is an arena of jobs addressed by stable generated identifiers.
// Edges are stored as identifier pairs plus a status label, mutually on
// both endpoints: adding or removing a dependency updates both sides.
//
// The graph carries no scheduling semantics itself and is not safe for
// concurrent mutation; it is built and pruned before scheduling starts.
type Graph struct {
	jobs map[ID]*Job

	// deps maps a job to its ordered dependencies, dependents is the
	// reverse direction. Both always carry the same edge set.
	deps       map[ID][]edge
	dependents map[ID][]edge
}

// New creates a new empty workflow graph.
func New() *Graph {
	return &Graph{
		jobs:       make(map[ID]*Job),
		deps:       make(map[ID][]edge),
		dependents: make(map[ID][]edge),
	}
}

// AddJob adds a new job to the graph and returns it.
func (g *Graph) AddJob(spec JobSpec) (*Job, error) {
	name := spec.Name
	if name == "" {
		name = spec.Task.Name
	}
	if name == "" {
		return nil, errors.E(ErrInvalidJob, "job has no name nor task")
	}

	job := &Job{
		id:       ID(uuid.NewString()),
		graph:    g,
		name:     name,
		task:     spec.Task,
		array:    spec.Array,
		env:      append([]string(nil), spec.Env...),
		settings: spec.Settings.clone(),
		wait:     WaitAll,
		done:     make(map[int]bool),
	}

	g.jobs[job.id] = job
	g.deps[job.id] = nil
	g.dependents[job.id] = nil

	log.Trace().
		Str("action", "workflow.AddJob()").
		Stringer("job", job).
		Str("id", string(job.id)).
		Msg("Job added.")
	return job, nil
}

// Job returns the job with the given id.
func (g *Graph) Job(id ID) (*Job, error) {
	job, ok := g.jobs[id]
	if !ok {
		return nil, errors.E(ErrJobNotFound, string(id))
	}
	return job, nil
}

// addEdge records parent as a dependency of child with the given status,
// updating both endpoints. Edge labels are immutable: adding an edge that
// already exists keeps the original label.
func (g *Graph) addEdge(child, parent ID, status Status) {
	for _, e := range g.deps[child] {
		if e.id == parent {
			return
		}
	}
	g.deps[child] = append(g.deps[child], edge{id: parent, status: status})
	g.dependents[parent] = append(g.dependents[parent], edge{id: child, status: status})
}

// removeEdge removes the dependency edge between child and parent from
// both endpoints.
func (g *Graph) removeEdge(child, parent ID) {
	g.deps[child] = cutEdge(g.deps[child], parent)
	g.dependents[parent] = cutEdge(g.dependents[parent], child)
}

func cutEdge(edges []edge, id ID) []edge {
	for i, e := range edges {
		if e.id == id {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

// resolve maps stored edges to Dependency values.
func (g *Graph) resolve(edges []edge) []Dependency {
	if len(edges) == 0 {
		return nil
	}
	deps := make([]Dependency, len(edges))
	for i, e := range edges {
		deps[i] = Dependency{Job: g.jobs[e.id], Status: e.status}
	}
	return deps
}
