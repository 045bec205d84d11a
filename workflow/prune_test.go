// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package workflow_test

import (
	"testing"

	"github.com/madlambda/spells/assert"

	"github.com/iSach/dawgz/workflow"
)

func TestPruneSkipsAndDetachesDoneJobs(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	a := addJob(t, g, workflow.JobSpec{Name: "a"})
	b := addJob(t, g, workflow.JobSpec{Name: "b"})
	after(t, b, workflow.Success, a)

	assert.NoError(t, b.Ensure(func() bool { return true }))

	left := g.Prune(b)
	assert.EqualInts(t, 0, len(left), "done target dropped from pending work")
	assert.IsTrue(t, b.Skipped(), "done job marked skipped")
	assert.EqualInts(t, 0, len(b.Dependencies()), "done job detached")
	assert.EqualInts(t, 0, len(a.Dependents()), "detaching updates both sides")
}

func TestPruneShrinksArraySpec(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	job := addJob(t, g, workflow.JobSpec{Name: "arr", Array: workflow.Count(3)})
	assert.NoError(t, job.EnsureIndexed(func(i int) bool { return i == 1 }))

	left := g.Prune(job)
	assert.EqualInts(t, 1, len(left), "array job with pending indices stays")
	assert.EqualStrings(t, "0,2", job.Array().String(),
		"array spec shrunk to the pending indices")
}

func TestPruneDropsFullyDoneArrayJob(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	job := addJob(t, g, workflow.JobSpec{Name: "arr", Array: workflow.Count(3)})
	assert.NoError(t, job.EnsureIndexed(func(int) bool { return true }))

	left := g.Prune(job)
	assert.EqualInts(t, 0, len(left))
	assert.IsTrue(t, job.Skipped(), "fully done array job skipped")
}

func TestPruneDetachesSatisfiedDepsUnderWaitAll(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	done := addJob(t, g, workflow.JobSpec{Name: "done"})
	pending := addJob(t, g, workflow.JobSpec{Name: "pending"})
	target := addJob(t, g, workflow.JobSpec{Name: "target"})
	after(t, target, workflow.Success, done, pending)

	assert.NoError(t, done.Ensure(func() bool { return true }))

	left := g.Prune(target)
	assert.EqualInts(t, 1, len(left))

	deps := target.Dependencies()
	assert.EqualInts(t, 1, len(deps), "only the satisfied edge detached")
	assert.EqualStrings(t, "pending", deps[0].Job.Name())
}

func TestPruneDetachesAllDepsUnderWaitAny(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	done := addJob(t, g, workflow.JobSpec{Name: "done"})
	pending := addJob(t, g, workflow.JobSpec{Name: "pending"})
	target := addJob(t, g, workflow.JobSpec{Name: "target"})
	after(t, target, workflow.Success, done, pending)
	assert.NoError(t, target.WaitFor(workflow.WaitAny))

	assert.NoError(t, done.Ensure(func() bool { return true }))

	g.Prune(target)
	assert.EqualInts(t, 0, len(target.Dependencies()),
		"one satisfied dependency satisfies the whole any-mode condition")
}

func TestPruneKeepsFailureEdgesToDoneDeps(t *testing.T) {
	t.Parallel()

	// A failure edge requires the dependency to fail, which being done
	// does not prove.
	g := workflow.New()
	done := addJob(t, g, workflow.JobSpec{Name: "done"})
	target := addJob(t, g, workflow.JobSpec{Name: "target"})
	after(t, target, workflow.Failure, done)

	assert.NoError(t, done.Ensure(func() bool { return true }))

	g.Prune(target)
	assert.EqualInts(t, 1, len(target.Dependencies()),
		"failure edge to a done dependency stays attached")
}

func TestPruneKeepsFailureEdgeUnderWaitAny(t *testing.T) {
	t.Parallel()

	g := workflow.New()
	done := addJob(t, g, workflow.JobSpec{Name: "done"})
	target := addJob(t, g, workflow.JobSpec{Name: "target"})
	after(t, target, workflow.Failure, done)
	assert.NoError(t, target.WaitFor(workflow.WaitAny))

	assert.NoError(t, done.Ensure(func() bool { return true }))

	g.Prune(target)
	assert.EqualInts(t, 1, len(target.Dependencies()),
		"a done dependency does not satisfy an any-mode failure edge")
}
