// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package workflow_test

import (
	"testing"

	"github.com/madlambda/spells/assert"

	"github.com/iSach/dawgz/errors"
	"github.com/iSach/dawgz/task"
	"github.com/iSach/dawgz/workflow"
)

func TestJobWithoutPostconditionsIsNeverDone(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	job := addJob(t, g, workflow.JobSpec{Name: "a"})
	assert.IsTrue(t, !job.Done(), "no postconditions, never provably done")
}

func TestPostconditionsAreConjoined(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	job := addJob(t, g, workflow.JobSpec{Name: "a"})
	assert.NoError(t, job.Ensure(func() bool { return true }))
	assert.NoError(t, job.Ensure(func() bool { return false }))
	assert.IsTrue(t, !job.Done(), "one failing postcondition is enough")

	other := addJob(t, g, workflow.JobSpec{Name: "b"})
	assert.NoError(t, other.Ensure(func() bool { return true }))
	assert.NoError(t, other.Ensure(func() bool { return true }))
	assert.IsTrue(t, other.Done(), "all postconditions hold")
}

func TestPostconditionArityIsValidated(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	plain := addJob(t, g, workflow.JobSpec{Name: "plain"})
	arr := addJob(t, g, workflow.JobSpec{Name: "arr", Array: workflow.Count(2)})

	errors.AssertIsKind(t,
		plain.EnsureIndexed(func(int) bool { return true }),
		workflow.ErrArityMismatch)
	errors.AssertIsKind(t,
		arr.Ensure(func() bool { return true }),
		workflow.ErrArityMismatch)

	assert.NoError(t, plain.Ensure(func() bool { return true }))
	assert.NoError(t, arr.EnsureIndexed(func(int) bool { return true }))
}

func TestDoneIsCachedPerIndex(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	job := addJob(t, g, workflow.JobSpec{Name: "arr", Array: workflow.Count(2)})

	evals := map[int]int{}
	assert.NoError(t, job.EnsureIndexed(func(i int) bool {
		evals[i]++
		return true
	}))

	assert.IsTrue(t, job.DoneIndex(0), "index 0 done")
	assert.IsTrue(t, job.DoneIndex(0), "index 0 still done")
	assert.IsTrue(t, job.Done(), "whole array done")
	assert.EqualInts(t, 1, evals[0], "postcondition evaluated once for index 0")
	assert.EqualInts(t, 1, evals[1], "postcondition evaluated once for index 1")
}

func TestArrayDoneCoversCurrentSpec(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	job := addJob(t, g, workflow.JobSpec{Name: "arr", Array: workflow.Indices(0, 1, 2)})
	assert.NoError(t, job.EnsureIndexed(func(i int) bool { return i != 1 }))

	assert.IsTrue(t, !job.Done(), "index 1 still pending")
	assert.IsTrue(t, job.DoneIndex(0), "index 0 done")
	assert.IsTrue(t, !job.DoneIndex(1), "index 1 not done")
}

func TestVerifyBypassesCache(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	job := addJob(t, g, workflow.JobSpec{Name: "a"})

	ok := false
	assert.NoError(t, job.Ensure(func() bool { return ok }))
	assert.IsTrue(t, !job.Done(), "not done before running")

	// Simulates the work making the postcondition true: Verify sees the
	// fresh value, the cached Done answer is unchanged.
	ok = true
	assert.IsTrue(t, job.Verify(task.NoIndex), "postconditions hold after run")
	assert.IsTrue(t, !job.Done(), "done cache bounds evaluations to one per run")
}

func TestTaskRefIsCopied(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	job := addJob(t, g, workflow.JobSpec{
		Task: task.Ref{Name: "train", Args: []string{"--lr=0.1"}},
	})

	ref := job.Task()
	ref.Args[0] = "mutated"
	assert.EqualStrings(t, "--lr=0.1", job.Task().Args[0])
}
