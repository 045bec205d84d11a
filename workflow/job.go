// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package workflow

import (
	"fmt"

	"github.com/iSach/dawgz/errors"
	"github.com/iSach/dawgz/task"
)

// Predicate proves that a job's work is already complete.
type Predicate func() bool

// IndexPredicate proves that one index of an array job is complete.
type IndexPredicate func(i int) bool

// JobSpec declares a job to be added to a graph.
type JobSpec struct {
	// Name identifies the job in logs, reports and batch submissions.
	// Defaults to the task name.
	Name string

	// Task references the registered task to invoke.
	Task task.Ref

	// Array makes the job an array job over the given index set.
	Array *IndexSet

	// Env are environment directives passed through to batch scripts.
	Env []string

	// Settings are resource directives merged over backend defaults.
	Settings *Settings
}

// Dependency is one dependency edge of a job: the dependency itself and
// the status its outcome must have to satisfy the edge.
type Dependency struct {
	Job    *Job
	Status Status
}

// Job is a schedulable unit of work: a graph node specialized with a task
// reference, an optional array spec, deployment settings, a wait mode and
// postconditions proving completion.
type Job struct {
	id    ID
	graph *Graph
	name  string
	task  task.Ref

	array    *IndexSet
	env      []string
	settings *Settings

	wait WaitMode
	skip bool

	// post holds the registered postconditions, uniformly indexed.
	// Non-array predicates are wrapped to ignore the index.
	post []IndexPredicate

	// done caches postcondition evaluations per index (task.NoIndex for
	// the no-array form) so expensive checks run at most once per run.
	done map[int]bool
}

// ID returns the job's generated identifier.
func (j *Job) ID() ID { return j.id }

// Name returns the job's display name.
func (j *Job) Name() string { return j.name }

// Graph returns the graph owning the job.
func (j *Job) Graph() *Graph { return j.graph }

// Task returns the job's work reference.
func (j *Job) Task() task.Ref {
	return task.Ref{Name: j.task.Name, Args: append([]string(nil), j.task.Args...)}
}

// Array returns the job's current array spec, nil for non-array jobs.
// Pruning may shrink the spec, never grow it.
func (j *Job) Array() *IndexSet { return j.array }

// Env returns the job's environment directives.
func (j *Job) Env() []string { return append([]string(nil), j.env...) }

// Settings returns the job's resource settings, possibly nil.
func (j *Job) Settings() *Settings { return j.settings }

// Mode returns the job's wait mode.
func (j *Job) Mode() WaitMode { return j.wait }

// Skipped tells if pruning proved the job already satisfied, meaning it
// must not be executed again.
func (j *Job) Skipped() bool { return j.skip }

// String renders the job as its name plus the array spec, if any.
func (j *Job) String() string {
	if j.array == nil {
		return j.name
	}
	return j.name + "[" + j.array.String() + "]"
}

// After records the given jobs as dependencies which must resolve with the
// given status before this job may execute.
func (j *Job) After(status Status, deps ...*Job) error {
	switch status {
	case Success, Failure, Any:
	default:
		return errors.E(ErrInvalidStatus, string(status))
	}
	for _, dep := range deps {
		j.graph.addEdge(j.id, dep.id, status)
	}
	return nil
}

// Detach removes the dependency edges to the given jobs, both directions
// at once.
func (j *Job) Detach(deps ...*Job) {
	for _, dep := range deps {
		j.graph.removeEdge(j.id, dep.id)
	}
}

// Dependencies returns the job's dependency edges in declaration order.
func (j *Job) Dependencies() []Dependency {
	return j.graph.resolve(j.graph.deps[j.id])
}

// Dependents returns the jobs depending on this one, with the status each
// of them requires.
func (j *Job) Dependents() []Dependency {
	return j.graph.resolve(j.graph.dependents[j.id])
}

// WaitFor sets how many dependency edges must be satisfied before the job
// executes: all of them or any one of them.
func (j *Job) WaitFor(mode WaitMode) error {
	switch mode {
	case WaitAll, WaitAny:
	default:
		return errors.E(ErrInvalidWaitMode, string(mode))
	}
	j.wait = mode
	return nil
}

// Ensure registers a postcondition proving the whole job is complete.
// It is an error on array jobs, which take indexed postconditions.
func (j *Job) Ensure(p Predicate) error {
	if j.array != nil {
		return errors.E(ErrArityMismatch,
			fmt.Sprintf("array job %q takes indexed postconditions", j.name))
	}
	j.post = append(j.post, func(int) bool { return p() })
	return nil
}

// EnsureIndexed registers a postcondition proving one array index is
// complete. It is an error on non-array jobs.
func (j *Job) EnsureIndexed(p IndexPredicate) error {
	if j.array == nil {
		return errors.E(ErrArityMismatch,
			fmt.Sprintf("non-array job %q takes plain postconditions", j.name))
	}
	j.post = append(j.post, p)
	return nil
}

// Done tells if the job is provably complete: all postconditions hold, for
// every index of the current array spec if the job has one. A job without
// postconditions is never provably done. Evaluations are cached, at most
// one per index per run.
func (j *Job) Done() bool {
	if len(j.post) == 0 {
		return false
	}
	if j.array == nil {
		return j.doneAt(task.NoIndex)
	}
	for _, i := range j.array.Indices() {
		if !j.doneAt(i) {
			return false
		}
	}
	return true
}

// DoneIndex tells if one index of an array job is provably complete.
func (j *Job) DoneIndex(i int) bool {
	if len(j.post) == 0 {
		return false
	}
	return j.doneAt(i)
}

func (j *Job) doneAt(i int) bool {
	if v, ok := j.done[i]; ok {
		return v
	}
	v := true
	for _, p := range j.post {
		if !p(i) {
			v = false
			break
		}
	}
	j.done[i] = v
	return v
}

// Verify re-evaluates the job's postconditions for the given index after
// execution, bypassing the cache. It reports true when no postconditions
// are registered.
func (j *Job) Verify(index int) bool {
	for _, p := range j.post {
		if !p(index) {
			return false
		}
	}
	return true
}
